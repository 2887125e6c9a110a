package slideshow

import (
	"context"

	"gallery-viewer/internal/loader"
)

// Surface is the modal's display. All calls are made with the controller's
// lock held and never for a superseded render.
type Surface interface {
	SetOpen(open bool)
	SetTitle(title string)
	SetDownload(url, name string)
	SetBackdrop(url string)
	// ResetMedia pauses and detaches any video and clears the image.
	ResetMedia()
	ShowImage(m loader.Media)
	ShowVideo(url string)
}

// Recoverer attempts access recovery; see refresh.Coordinator.
type Recoverer interface {
	RequestRecovery(ctx context.Context, pos int) bool
}

// ClickTarget identifies what a pointer click landed on.
type ClickTarget int

const (
	ClickBackdrop ClickTarget = iota
	ClickImage
	ClickStage
)
