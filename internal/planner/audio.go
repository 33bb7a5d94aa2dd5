package planner

import (
	"sort"

	"github.com/backmassage/fftrim/internal/probe"
)

// AudioPolicy is the resolved audio handling for a trim. The concrete types
// are NoAudio, SingleTrack, MixTracks and WeightedMix; the set is closed.
type AudioPolicy interface {
	// Kind returns "none", "single", "multi" or "weighted".
	Kind() string
	// CanCopyAudio reports whether audio can be passed through without
	// re-encoding.
	CanCopyAudio() bool

	audioPolicy()
}

// NoAudio drops every audio track.
type NoAudio struct{}

// SingleTrack keeps exactly one audio track, addressed by audio ordinal.
type SingleTrack struct {
	Track int
}

// MixTracks mixes two or more tracks with equal weight. Tracks are
// ascending audio ordinals.
type MixTracks struct {
	Tracks []int
}

// TrackWeight pairs an audio ordinal with its mix weight.
type TrackWeight struct {
	Track  int
	Weight float64
}

// WeightedMix mixes two or more tracks with explicit weights, ascending by
// track.
type WeightedMix struct {
	Tracks []TrackWeight
}

func (NoAudio) Kind() string     { return "none" }
func (SingleTrack) Kind() string { return "single" }
func (MixTracks) Kind() string   { return "multi" }
func (WeightedMix) Kind() string { return "weighted" }

func (NoAudio) CanCopyAudio() bool     { return false }
func (SingleTrack) CanCopyAudio() bool { return true }
func (MixTracks) CanCopyAudio() bool   { return false }
func (WeightedMix) CanCopyAudio() bool { return false }

func (NoAudio) audioPolicy()     {}
func (SingleTrack) audioPolicy() {}
func (MixTracks) audioPolicy()   {}
func (WeightedMix) audioPolicy() {}

// ClassifyWeights derives the audio policy from a track → weight mapping.
// Zero weights are dropped first. A single survivor is always SingleTrack
// whatever its magnitude; weights only matter once two or more survive.
func ClassifyWeights(weights map[int]float64) AudioPolicy {
	var tracks []TrackWeight
	for track, w := range weights {
		if w == 0 {
			continue
		}
		tracks = append(tracks, TrackWeight{Track: track, Weight: w})
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Track < tracks[j].Track })

	switch len(tracks) {
	case 0:
		return NoAudio{}
	case 1:
		return SingleTrack{Track: tracks[0].Track}
	}

	for _, tw := range tracks[1:] {
		if tw.Weight != tracks[0].Weight {
			return WeightedMix{Tracks: tracks}
		}
	}
	ids := make([]int, len(tracks))
	for i, tw := range tracks {
		ids[i] = tw.Track
	}
	return MixTracks{Tracks: ids}
}

// WeightsFromList maps a positional weight list onto audio ordinals:
// element i is the weight of track 0:a:i.
func WeightsFromList(list []float64) map[int]float64 {
	m := make(map[int]float64, len(list))
	for i, w := range list {
		m[i] = w
	}
	return m
}

// DefaultPolicy is used when no weights were given: keep the first audio
// track if the file has one, otherwise drop audio. A VideoData without any
// streams (the duration fallback) is assumed to have a first audio track.
func DefaultPolicy(vd *probe.VideoData) AudioPolicy {
	if vd != nil && len(vd.Streams) > 0 && len(vd.AudioStreams()) == 0 {
		return NoAudio{}
	}
	return SingleTrack{Track: 0}
}
