package fileutils

import (
	"context"
)

// WatchFile emits on the returned channel whenever the content hash of the
// file at path changes. Checks run on ticks from the provided channel so the
// caller controls the polling cadence.
func WatchFile(ctx context.Context, path string, ticks <-chan struct{}, onErr func(err error)) (chan struct{}, error) {
	ch := make(chan struct{})

	lastHash, err := ComputeFileHash(path)
	if err != nil {
		return nil, err
	}

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				newHash, err := ComputeFileHash(path)
				if err != nil {
					onErr(err)
					continue
				}
				if newHash != lastHash {
					lastHash = newHash
					ch <- struct{}{}
				}
			}
		}
	}()

	return ch, nil
}
