package probe

// StreamType classifies a media stream.
type StreamType string

const (
	StreamVideo StreamType = "video"
	StreamAudio StreamType = "audio"
)

// Stream is one video or audio stream of the probed container.
type Stream struct {
	Index int        // Absolute index in the container.
	Type  StreamType // Video or audio.
	Codec string     // ffprobe codec_name, never empty.
}

// VideoData is the validated result of probing a file. It is never mutated
// after [ParseJSON] returns it.
type VideoData struct {
	DurationSeconds float64
	Streams         []Stream
}

// AudioStreams returns the audio streams in container order. The position
// of a stream in this slice is its audio ordinal, the N in "0:a:N".
func (v *VideoData) AudioStreams() []Stream {
	return v.streamsOf(StreamAudio)
}

// VideoStreams returns the video streams in container order.
func (v *VideoData) VideoStreams() []Stream {
	return v.streamsOf(StreamVideo)
}

// HasVideo reports whether at least one video stream was found.
func (v *VideoData) HasVideo() bool {
	return len(v.VideoStreams()) > 0
}

func (v *VideoData) streamsOf(t StreamType) []Stream {
	var out []Stream
	for _, s := range v.Streams {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}
