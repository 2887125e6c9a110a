package loader

import "context"

// Media describes a fetched candidate.
type Media struct {
	URL         string
	ContentType string
	Width       int
	Height      int
	Size        int64
}

// Fetcher retrieves a candidate without displaying it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Media, error)
}

// FetchTarget returns a Target that fetches each candidate with f and hands
// successful results to show. An error from show fails the attempt.
func FetchTarget(f Fetcher, show func(Media) error) Target {
	return TargetFunc(func(ctx context.Context, url string) error {
		m, err := f.Fetch(ctx, url)
		if err != nil {
			return err
		}
		return show(m)
	})
}
