package config

import "github.com/docker/go-units"

// SizeArgument accepts human readable sizes ("100MB", "2GB") from flags and
// config values and exposes them in bytes.
type SizeArgument struct {
	Size int64 `arg:"" help:"size in bytes"`
}

func (s *SizeArgument) UnmarshalText(text []byte) (err error) {
	s.Size, err = units.FromHumanSize(string(text))
	return
}

func (s SizeArgument) String() string {
	return units.HumanSize(float64(s.Size))
}
