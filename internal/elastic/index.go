package elastic

import (
	"bytes"
	"context"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"
)

const IdxMessages = "messages_v1"

const messagesMapping = `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
	"channel_id":{"type":"keyword"},"sender_id":{"type":"keyword"},"sender_nickname":{"type":"keyword"},
	"type":{"type":"keyword"},"content":{"type":"text"},"language":{"type":"keyword"},
	"reply_to_id":{"type":"keyword"},"deleted":{"type":"boolean"},"pinned":{"type":"boolean"},
	"timestamp":{"type":"date"}
}}}`

func EnsureIndexes(ctx context.Context, c *es.Client) error {
	return ensure(ctx, c, IdxMessages, messagesMapping)
}

func ensure(ctx context.Context, c *es.Client, index, body string) error {
	exists, err := c.Indices.Exists([]string{index}, c.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}
	res, err := c.Indices.Create(index, c.Indices.Create.WithBody(bytes.NewBufferString(body)), c.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return nil
}
