package batch

import "github.com/dmitrijs2005/gophmarket/internal/client/models"

// Observer receives coordinator changes. Calls may arrive from several
// goroutines at once; SlotsChanged versions grow strictly, so a consumer can
// drop a snapshot older than one it already holds.
type Observer interface {
	SlotsChanged(version uint64, slots []models.UploadState)
	ImagesChanged(images []string)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) SlotsChanged(uint64, []models.UploadState) {}
func (NopObserver) ImagesChanged([]string)                    {}

// Observers fans notifications out in order.
type Observers []Observer

func (o Observers) SlotsChanged(version uint64, slots []models.UploadState) {
	for _, ob := range o {
		ob.SlotsChanged(version, slots)
	}
}

func (o Observers) ImagesChanged(images []string) {
	for _, ob := range o {
		ob.ImagesChanged(images)
	}
}

// ObserverFuncs adapts optional callbacks to Observer.
type ObserverFuncs struct {
	Slots  func(version uint64, slots []models.UploadState)
	Images func(images []string)
}

func (f ObserverFuncs) SlotsChanged(version uint64, slots []models.UploadState) {
	if f.Slots != nil {
		f.Slots(version, slots)
	}
}

func (f ObserverFuncs) ImagesChanged(images []string) {
	if f.Images != nil {
		f.Images(images)
	}
}
