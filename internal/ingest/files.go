package ingest

import (
	"github.com/sirdesai22/crosswire-replica/internal/models"
	"github.com/sirdesai22/crosswire-replica/internal/session"
	"github.com/sirdesai22/crosswire-replica/internal/wire"
)

func (d *Dispatcher) applyFile(e wire.Event) error {
	switch e.Type {
	case wire.FileList:
		list, err := wire.Files(e.Data)
		if err != nil {
			return err
		}
		d.mutate(session.TopicFiles, e, "", nil, func(st *session.State) bool {
			st.Files.SetFiles(list)
			return true
		})

	case wire.FileUploadStarted, wire.FileDownloadStarted:
		w, err := wire.DecodeEntity[wire.File](e, "file")
		if err != nil {
			return err
		}
		f := w.Canonical()
		d.mutate(session.TopicFiles, e, f.ChannelID, []string{f.ID}, func(st *session.State) bool {
			if e.Type == wire.FileDownloadStarted {
				return st.Files.StartDownload(f)
			}
			return st.Files.StartUpload(f)
		})

	case wire.FileUploadProgress, wire.FileDownloadProgress:
		p, err := wire.Decode[wire.FileProgress](e)
		if err != nil {
			return err
		}
		d.mutate(session.TopicFiles, e, "", []string{p.FileID}, func(st *session.State) bool {
			return st.Files.UpdateProgress(p.FileID, p.Progress)
		})

	case wire.FileUploadCompleted:
		c, err := wire.Decode[wire.FileComplete](e)
		if err != nil {
			return err
		}
		id := c.ID()
		d.mutate(session.TopicFiles, e, "", []string{id}, func(st *session.State) bool {
			return st.Files.CompleteUpload(id, completedInfo(st, id, c.File))
		})

	case wire.FileDownloadCompleted:
		c, err := wire.Decode[wire.FileComplete](e)
		if err != nil {
			return err
		}
		id := c.ID()
		d.mutate(session.TopicFiles, e, "", []string{id}, func(st *session.State) bool {
			return st.Files.CompleteDownload(id)
		})

	case wire.FileUploadFailed, wire.FileDownloadFailed:
		f, err := wire.Decode[wire.FileFailed](e)
		if err != nil {
			return err
		}
		d.mutate(session.TopicFiles, e, "", []string{f.FileID}, func(st *session.State) bool {
			return st.Files.Fail(f.FileID, f.Error)
		})

	case wire.FileUploadCancelled, wire.FileDownloadCancelled:
		ref, err := wire.Decode[wire.Ref](e)
		if err != nil {
			return err
		}
		id := ref.File()
		d.mutate(session.TopicFiles, e, "", []string{id}, func(st *session.State) bool {
			return st.Files.Cancel(id)
		})
	}
	return nil
}

// completedInfo prefers the file record carried by the event and falls back
// to what the transient upload knew.
func completedInfo(st *session.State, id string, f *wire.File) models.File {
	if f != nil {
		return f.Canonical()
	}
	info := models.File{ID: id}
	if t, ok := st.Files.Transfer(id); ok {
		info.Name = t.Name
		info.Size = t.Size
	}
	return info
}
