package elastic

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/sirdesai22/crosswire-replica/internal/metrics"
	"github.com/sirdesai22/crosswire-replica/internal/session"
)

// Indexer mirrors ledger messages into Elasticsearch as they change.
// Messages the ledger drops (channel clears, removals, resets) are deleted
// from the index too.
type Indexer struct {
	ES            *es.Client
	S             *session.Session
	FlushInterval time.Duration

	indexed map[string]struct{} // ids sent to the index; owned by Run
}

type pendingDoc struct {
	id   string
	body []byte
}

func (ix *Indexer) Run(ctx context.Context) error {
	changes, cancel := ix.S.Subscribe(256)
	defer cancel()

	if err := ix.purge(ctx); err != nil {
		return err
	}
	ix.indexed = map[string]struct{}{}

	// One worker keeps the index and delete of an id in submission order.
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client: ix.ES, Index: IdxMessages, FlushBytes: 5 << 20, NumWorkers: 1, FlushInterval: ix.FlushInterval,
	})
	if err != nil {
		return fmt.Errorf("bulk indexer: %w", err)
	}
	ix.index(ctx, bi, ix.snapshot(nil))

	for {
		select {
		case <-ctx.Done():
			// Flush what is queued even though ctx is done.
			if err := bi.Close(context.Background()); err != nil {
				return err
			}
			stats := bi.Stats()
			log.Printf("bulk ok=%d failed=%d", stats.NumFlushed, stats.NumFailed)
			return nil
		case c, ok := <-changes:
			if !ok {
				return bi.Close(context.Background())
			}
			switch {
			case c.Topic == session.TopicMessages && len(c.IDs) > 0:
				ix.index(ctx, bi, ix.snapshot(c.IDs))
			case c.Topic == session.TopicMessages, c.Topic == session.TopicChannels, c.Topic == session.TopicSession:
				ix.prune(ctx, bi)
			}
		}
	}
}

// purge empties the index so it only ever reflects this session.
func (ix *Indexer) purge(ctx context.Context) error {
	res, err := ix.ES.DeleteByQuery(
		[]string{IdxMessages},
		strings.NewReader(`{"query":{"match_all":{}}}`),
		ix.ES.DeleteByQuery.WithContext(ctx),
		ix.ES.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return fmt.Errorf("purge %s: %w", IdxMessages, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("purge %s: %s", IdxMessages, res.Status())
	}
	return nil
}

func (ix *Indexer) index(ctx context.Context, bi esutil.BulkIndexer, docs []pendingDoc) {
	for _, d := range docs {
		if err := ix.add(ctx, bi, d); err != nil {
			log.Printf("❌ index message id=%s: %v", d.id, err)
			continue
		}
		ix.indexed[d.id] = struct{}{}
	}
}

// prune deletes every indexed id the ledger no longer holds.
func (ix *Indexer) prune(ctx context.Context, bi esutil.BulkIndexer) {
	var gone []string
	ix.S.Read(func(st *session.State) {
		for id := range ix.indexed {
			if _, ok := st.Messages.Message(id); !ok {
				gone = append(gone, id)
			}
		}
	})
	for _, id := range gone {
		if err := ix.remove(ctx, bi, id); err != nil {
			log.Printf("❌ unindex message id=%s: %v", id, err)
			continue
		}
		delete(ix.indexed, id)
	}
}

// snapshot copies the current ledger state of ids under the read lock;
// nil ids means every message in the ledger.
func (ix *Indexer) snapshot(ids []string) []pendingDoc {
	var out []pendingDoc
	ix.S.Read(func(st *session.State) {
		if ids == nil {
			for _, ch := range st.Messages.ChannelIDs() {
				for _, m := range st.Messages.Messages(ch) {
					ids = append(ids, m.ID)
				}
			}
		}
		for _, id := range ids {
			m, ok := st.Messages.Message(id)
			if !ok {
				continue
			}
			body, err := BuildMessageDoc(m)
			if err != nil {
				log.Printf("❌ build doc id=%s: %v", id, err)
				continue
			}
			out = append(out, pendingDoc{id: id, body: body})
		}
	})
	return out
}

func (ix *Indexer) remove(ctx context.Context, bi esutil.BulkIndexer, id string) error {
	return bi.Add(ctx, esutil.BulkIndexerItem{
		Action:     "delete",
		DocumentID: id,
		OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			if err == nil && res.Status == 404 {
				return
			}
			log.Printf("💀 unindex %s id=%s status=%d err=%v", IdxMessages, id, res.Status, err)
		},
	})
}

func (ix *Indexer) add(ctx context.Context, bi esutil.BulkIndexer, d pendingDoc) error {
	return bi.Add(ctx, esutil.BulkIndexerItem{
		Action:     "index",
		DocumentID: d.id,
		Body:       bytes.NewReader(d.body),
		OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
			metrics.SearchIndexed.Inc()
		},
		OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			msg := ""
			switch {
			case err != nil:
				msg = err.Error()
			case res.Error.Reason != "":
				msg = fmt.Sprintf("%s: %s", res.Error.Type, res.Error.Reason)
			default:
				msg = fmt.Sprintf("status=%d failed to index", res.Status)
			}
			log.Printf("💀 index %s id=%s reason=%s", IdxMessages, d.id, msg)
		},
	})
}
