// Package files tracks shared files and the transfers still in flight.
//
// Permanent files and transient transfers are disjoint sets: a completed
// upload leaves the transient set and becomes (or replaces) a permanent
// record. Progress values are trusted as given.
package files

import (
	"slices"

	"github.com/sirdesai22/crosswire-replica/internal/models"
)

type Registry struct {
	files     []models.File
	transfers []models.Transfer
}

func NewRegistry() *Registry {
	return &Registry{}
}

// SetFiles replaces the permanent set after a list sync.
func (r *Registry) SetFiles(list []models.File) {
	r.files = r.files[:0]
	for _, f := range list {
		r.AddFile(f)
	}
}

func (r *Registry) AddFile(f models.File) bool {
	if f.ID == "" || r.fileIndex(f.ID) >= 0 {
		return false
	}
	r.files = append(r.files, f)
	return true
}

func (r *Registry) RemoveFile(id string) bool {
	i := r.fileIndex(id)
	if i < 0 {
		return false
	}
	r.files = slices.Delete(r.files, i, i+1)
	return true
}

func (r *Registry) File(id string) (models.File, bool) {
	if i := r.fileIndex(id); i >= 0 {
		return r.files[i], true
	}
	return models.File{}, false
}

func (r *Registry) Files() []models.File {
	return slices.Clone(r.files)
}

func (r *Registry) TotalFileSize() int64 {
	var total int64
	for _, f := range r.files {
		total += f.Size
	}
	return total
}

// StartUpload records f as uploading at 0%. An id already in flight is
// left as is.
func (r *Registry) StartUpload(f models.File) bool {
	return r.start(f, models.Upload)
}

func (r *Registry) StartDownload(f models.File) bool {
	return r.start(f, models.Download)
}

func (r *Registry) start(f models.File, dir models.Direction) bool {
	if f.ID == "" || r.transferIndex(f.ID) >= 0 {
		return false
	}
	r.transfers = append(r.transfers, models.Transfer{
		ID:        f.ID,
		Name:      f.Name,
		Size:      f.Size,
		Progress:  0,
		Status:    models.TransferUploading,
		Direction: dir,
	})
	return true
}

// UpdateProgress sets the transfer's progress and flags it completed at
// 100%.
func (r *Registry) UpdateProgress(id string, progress int) bool {
	i := r.transferIndex(id)
	if i < 0 {
		return false
	}
	t := &r.transfers[i]
	t.Progress = progress
	if progress >= 100 {
		t.Status = models.TransferCompleted
	}
	return true
}

// CompleteUpload moves the upload out of the transient set and adds info
// as a permanent file, replacing any record with the same id. Nothing
// changes when neither id nor info carries an identifier.
func (r *Registry) CompleteUpload(id string, info models.File) bool {
	if info.ID == "" {
		info.ID = id
	}
	if info.ID == "" {
		return false
	}
	r.dropTransfer(id)
	if i := r.fileIndex(info.ID); i >= 0 {
		r.files[i] = info
		return true
	}
	r.files = append(r.files, info)
	return true
}

// CompleteDownload drops the transient record; the file is already known.
func (r *Registry) CompleteDownload(id string) bool {
	return r.dropTransfer(id)
}

// Fail keeps the record with its error until the caller dismisses it.
func (r *Registry) Fail(id, detail string) bool {
	i := r.transferIndex(id)
	if i < 0 {
		return false
	}
	r.transfers[i].Status = models.TransferFailed
	r.transfers[i].Error = detail
	return true
}

// Cancel removes the transfer immediately with no trace kept. It does not
// stop the underlying transfer.
func (r *Registry) Cancel(id string) bool {
	return r.dropTransfer(id)
}

// Dismiss removes a failed transfer once the caller has shown it.
func (r *Registry) Dismiss(id string) bool {
	return r.dropTransfer(id)
}

func (r *Registry) Transfer(id string) (models.Transfer, bool) {
	if i := r.transferIndex(id); i >= 0 {
		return r.transfers[i], true
	}
	return models.Transfer{}, false
}

func (r *Registry) Transfers() []models.Transfer {
	return slices.Clone(r.transfers)
}

// UploadProgress is 0 for unknown transfers.
func (r *Registry) UploadProgress(id string) int {
	if i := r.transferIndex(id); i >= 0 {
		return r.transfers[i].Progress
	}
	return 0
}

func (r *Registry) Reset() {
	r.files = nil
	r.transfers = nil
}

func (r *Registry) dropTransfer(id string) bool {
	i := r.transferIndex(id)
	if i < 0 {
		return false
	}
	r.transfers = slices.Delete(r.transfers, i, i+1)
	return true
}

func (r *Registry) fileIndex(id string) int {
	return slices.IndexFunc(r.files, func(f models.File) bool { return f.ID == id })
}

func (r *Registry) transferIndex(id string) int {
	return slices.IndexFunc(r.transfers, func(t models.Transfer) bool { return t.ID == id })
}
