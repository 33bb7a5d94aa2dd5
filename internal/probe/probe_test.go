package probe

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Matroska file with cover art, one HEVC video stream, two audio streams
// and an ASS subtitle stream.
const sampleMKV = `{
  "streams": [
    { "index": 0, "codec_name": "mjpeg", "codec_type": "video", "disposition": { "attached_pic": 1 } },
    { "index": 1, "codec_name": "hevc", "codec_type": "video", "width": 1920, "height": 1080 },
    { "index": 2, "codec_name": "aac", "codec_type": "audio", "channels": 2, "tags": { "language": "jpn" } },
    { "index": 3, "codec_name": "ac3", "codec_type": "audio", "channels": 6, "tags": { "language": "eng" } },
    { "index": 4, "codec_name": "ass", "codec_type": "subtitle", "tags": { "language": "eng" } }
  ],
  "format": {
    "filename": "/media/test/Show.S01E01.mkv",
    "nb_streams": 5,
    "format_name": "matroska,webm",
    "duration": "1437.123000",
    "size": "1234567890",
    "bit_rate": "6873456"
  }
}`

// Screen recording: video only.
const sampleMinimal = `{
  "streams": [
    { "index": 0, "codec_name": "h264", "codec_type": "video" }
  ],
  "format": { "filename": "minimal.mp4", "duration": "10.000" }
}`

func TestParseJSON_MKV(t *testing.T) {
	vd, err := ParseJSON([]byte(sampleMKV))
	require.NoError(t, err)

	assert.InDelta(t, 1437.123, vd.DurationSeconds, 1e-9)
	require.Len(t, vd.Streams, 4, "subtitle stream is not carried")

	assert.Equal(t, Stream{Index: 1, Type: StreamVideo, Codec: "hevc"}, vd.Streams[1])

	audio := vd.AudioStreams()
	require.Len(t, audio, 2)
	assert.Equal(t, 2, audio[0].Index)
	assert.Equal(t, "aac", audio[0].Codec)
	assert.Equal(t, 3, audio[1].Index)
	assert.Equal(t, "ac3", audio[1].Codec)

	assert.Len(t, vd.VideoStreams(), 2)
	assert.True(t, vd.HasVideo())
}

func TestParseJSON_Minimal(t *testing.T) {
	vd, err := ParseJSON([]byte(sampleMinimal))
	require.NoError(t, err)
	assert.Equal(t, 10.0, vd.DurationSeconds)
	assert.Empty(t, vd.AudioStreams())
	assert.True(t, vd.HasVideo())
}

func TestParseJSON_NumericDuration(t *testing.T) {
	vd, err := ParseJSON([]byte(`{"streams": [], "format": {"duration": 42.5}}`))
	require.NoError(t, err)
	assert.Equal(t, 42.5, vd.DurationSeconds)
	assert.False(t, vd.HasVideo())
}

func TestParseJSON_Rejects(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `ffprobe: invalid option`},
		{"missing format", `{"streams": []}`},
		{"missing duration", `{"streams": [], "format": {"filename": "a.mp4"}}`},
		{"null duration", `{"streams": [], "format": {"duration": null}}`},
		{"NaN duration", `{"streams": [], "format": {"duration": "NaN"}}`},
		{"N/A duration", `{"streams": [], "format": {"duration": "N/A"}}`},
		{"infinite duration", `{"streams": [], "format": {"duration": "inf"}}`},
		{"negative duration", `{"streams": [], "format": {"duration": "-1.0"}}`},
		{"boolean duration", `{"streams": [], "format": {"duration": true}}`},
		{
			"one unrecognized stream type among valid streams",
			`{"streams": [
				{"index": 0, "codec_name": "h264", "codec_type": "video"},
				{"index": 1, "codec_name": "aac", "codec_type": "audio"},
				{"index": 2, "codec_name": "weird", "codec_type": "hologram"}
			], "format": {"duration": "10"}}`,
		},
		{
			"missing stream type",
			`{"streams": [{"index": 0, "codec_name": "h264"}], "format": {"duration": "10"}}`,
		},
		{
			"audio stream without codec",
			`{"streams": [
				{"index": 0, "codec_name": "h264", "codec_type": "video"},
				{"index": 1, "codec_type": "audio"}
			], "format": {"duration": "10"}}`,
		},
		{
			"missing index",
			`{"streams": [{"codec_name": "h264", "codec_type": "video"}], "format": {"duration": "10"}}`,
		},
		{
			"negative index",
			`{"streams": [{"index": -1, "codec_name": "h264", "codec_type": "video"}], "format": {"duration": "10"}}`,
		},
		{
			"duplicate index",
			`{"streams": [
				{"index": 0, "codec_name": "h264", "codec_type": "video"},
				{"index": 0, "codec_name": "aac", "codec_type": "audio"}
			], "format": {"duration": "10"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vd, err := ParseJSON([]byte(tt.json))
			assert.Nil(t, vd)
			var pe *ProbeError
			require.ErrorAs(t, err, &pe)
		})
	}
}

func TestParseJSON_DataStreamWithoutCodecIsValid(t *testing.T) {
	vd, err := ParseJSON([]byte(`{"streams": [
		{"index": 0, "codec_name": "h264", "codec_type": "video"},
		{"index": 1, "codec_type": "data"}
	], "format": {"duration": "3"}}`))
	require.NoError(t, err)
	assert.Len(t, vd.Streams, 1)
}

func TestProbeError_Message(t *testing.T) {
	cause := errors.New("exit status 1")
	err := &ProbeError{Path: "in.mkv", Reason: "ffprobe failed", Err: cause}
	assert.Equal(t, `probe "in.mkv": ffprobe failed: exit status 1`, err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestProbe_MissingBinary(t *testing.T) {
	_, err := Probe(context.Background(), filepath.Join(t.TempDir(), "no-ffprobe"), "in.mkv")
	var pe *ProbeError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "in.mkv", pe.Path)
}

func TestProbe_RealFile(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not available")
	}

	path := filepath.Join(t.TempDir(), "sample.mkv")
	gen := exec.Command("ffmpeg",
		"-f", "lavfi", "-i", "testsrc=duration=2:size=320x240:rate=24",
		"-f", "lavfi", "-i", "sine=frequency=440:duration=2",
		"-f", "lavfi", "-i", "sine=frequency=880:duration=2",
		"-map", "0", "-map", "1", "-map", "2",
		"-c:v", "mpeg4", "-c:a", "mp2",
		"-y", path,
	)
	if err := gen.Run(); err != nil {
		t.Skipf("cannot generate sample: %v", err)
	}

	vd, err := Probe(context.Background(), "ffprobe", path)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, vd.DurationSeconds, 0.2)
	assert.Len(t, vd.AudioStreams(), 2)

	d, err := DurationFromDiagnostics(context.Background(), "ffmpeg", path)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d, 0.2)
}
