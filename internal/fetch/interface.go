package fetch

import "context"

// Fetcher downloads the audio track of a remote video.
type Fetcher interface {
	// Fetch writes the audio to <outputTemplate>.wav and returns that path.
	Fetch(ctx context.Context, url, outputTemplate string) (string, error)
}
