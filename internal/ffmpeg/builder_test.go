package ffmpeg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/fftrim/internal/planner"
)

func f64(v float64) *float64 { return &v }

func basePlan(audio planner.AudioPolicy) *planner.TrimPlan {
	return &planner.TrimPlan{
		InputPath:  "in.mkv",
		OutputPath: "out.mp4",
		Audio:      audio,
	}
}

func indexOf(args []string, s string) int {
	for i, a := range args {
		if a == s {
			return i
		}
	}
	return -1
}

func valueAfter(t *testing.T, args []string, flag string) string {
	t.Helper()
	i := indexOf(args, flag)
	require.GreaterOrEqual(t, i, 0, "flag %s missing from %v", flag, args)
	require.Less(t, i+1, len(args), "flag %s has no value", flag)
	return args[i+1]
}

func TestBuild_NoAudio(t *testing.T) {
	got := Build(basePlan(planner.NoAudio{}))
	want := []string{
		"-i", "in.mkv",
		"-map", "0:V:0", "-an",
		"-loglevel", "level+info", "-y",
		"out.mp4",
	}
	assert.Equal(t, want, got)
	assert.NotContains(t, strings.Join(got, " "), "0:a:")
}

func TestBuild_NilPolicyDropsAudio(t *testing.T) {
	got := Build(basePlan(nil))
	assert.Contains(t, got, "-an")
}

func TestBuild_SingleTrackCopies(t *testing.T) {
	got := Build(basePlan(planner.SingleTrack{Track: 2}))
	want := []string{
		"-i", "in.mkv",
		"-map", "0:V:0", "-map", "0:a:2", "-c:a", "copy",
		"-loglevel", "level+info", "-y",
		"out.mp4",
	}
	assert.Equal(t, want, got)
}

func TestBuild_MultiUnweighted(t *testing.T) {
	got := Build(basePlan(planner.MixTracks{Tracks: []int{0, 2}}))
	graph := valueAfter(t, got, "-filter_complex")
	assert.Equal(t, "[0:a:0][0:a:2]amix=inputs=2:duration=longest[aout]", graph)
	assert.NotContains(t, graph, "weights")
	assert.Equal(t, "[aout]", got[len(got)-5])
	assert.NotContains(t, got, "-c:a")
}

func TestBuild_WeightedMix(t *testing.T) {
	plan := basePlan(planner.WeightedMix{Tracks: []planner.TrackWeight{
		{Track: 0, Weight: 1},
		{Track: 2, Weight: 0.5},
	}})
	got := Build(plan)
	graph := valueAfter(t, got, "-filter_complex")
	assert.Equal(t, "[0:a:0][0:a:2]amix=inputs=2:duration=longest:weights=1 0.5[aout]", graph)
}

func TestBuild_FromClassifiedWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights map[int]float64
		check   func(t *testing.T, args []string)
	}{
		{"all zero", map[int]float64{0: 0, 1: 0}, func(t *testing.T, args []string) {
			assert.Contains(t, args, "-an")
			assert.NotContains(t, strings.Join(args, " "), "0:a:")
		}},
		{"empty", map[int]float64{}, func(t *testing.T, args []string) {
			assert.Contains(t, args, "-an")
		}},
		{"single large weight", map[int]float64{0: 0, 1: 7.5}, func(t *testing.T, args []string) {
			assert.Equal(t, "0:a:1", args[indexOf(args, "-c:a")-1])
			assert.Equal(t, "copy", valueAfter(t, args, "-c:a"))
		}},
		{"equal weights ascending", map[int]float64{3: 2, 1: 2, 0: 2}, func(t *testing.T, args []string) {
			assert.Equal(t, "[0:a:0][0:a:1][0:a:3]amix=inputs=3:duration=longest[aout]",
				valueAfter(t, args, "-filter_complex"))
		}},
		{"distinct weights aligned", map[int]float64{2: 0.25, 0: 1}, func(t *testing.T, args []string) {
			assert.Equal(t, "[0:a:0][0:a:2]amix=inputs=2:duration=longest:weights=1 0.25[aout]",
				valueAfter(t, args, "-filter_complex"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Build(basePlan(planner.ClassifyWeights(tt.weights))))
		})
	}
}

func TestBuild_Order(t *testing.T) {
	plan := &planner.TrimPlan{
		InputPath:  "in.mkv",
		OutputPath: "out.mp4",
		Start:      f64(10),
		End:        f64(20.5),
		Bitrate:    800000,
		Loudnorm:   true,
		Audio:      planner.SingleTrack{Track: 0},
		ExtraArgs:  []string{"-c:v", "libx264"},
	}
	got := Build(plan)
	want := []string{
		"-i", "in.mkv",
		"-ss", "10",
		"-to", "20.5",
		"-af", "loudnorm",
		"-b:v", "800000",
		"-map", "0:V:0", "-map", "0:a:0",
		"-c:v", "libx264",
		"-loglevel", "level+info", "-y",
		"out.mp4",
	}
	assert.Equal(t, want, got)
}

func TestBuild_ZeroStartOmitted(t *testing.T) {
	plan := basePlan(planner.NoAudio{})
	plan.Start = f64(0)
	got := Build(plan)
	assert.NotContains(t, got, "-ss")
	assert.NotContains(t, got, "-to")
	assert.NotContains(t, got, "-b:v")
}

func TestBuild_EndWithoutStart(t *testing.T) {
	plan := basePlan(planner.NoAudio{})
	plan.End = f64(0)
	got := Build(plan)
	assert.Equal(t, "0", valueAfter(t, got, "-to"))
}

func TestBuild_LoudnormInMixGraph(t *testing.T) {
	plan := basePlan(planner.MixTracks{Tracks: []int{0, 1}})
	plan.Loudnorm = true
	got := Build(plan)
	assert.NotContains(t, got, "-af")
	assert.Equal(t, "[0:a:0][0:a:1]amix=inputs=2:duration=longest,loudnorm[aout]",
		valueAfter(t, got, "-filter_complex"))
}

func TestBuild_LoudnormIgnoredWithoutAudio(t *testing.T) {
	plan := basePlan(planner.NoAudio{})
	plan.Loudnorm = true
	got := Build(plan)
	assert.NotContains(t, got, "-af")
	assert.NotContains(t, strings.Join(got, " "), "loudnorm")
}

func TestQuote(t *testing.T) {
	got := Quote("ffmpeg", []string{"-i", "my file.mkv", `a"b`})
	assert.Equal(t, `"ffmpeg" "-i" "my file.mkv" "a\"b"`, got)
}
