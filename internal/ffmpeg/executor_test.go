package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shell runs script through sh so tests can stand in for ffmpeg.
func shell(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return path
}

func TestStart_ProgressAndWait(t *testing.T) {
	sh := shell(t)
	script := `printf 'banner\rtime=00:00:01.00\rtime=00:00:02.50\rsummary\r' >&2`
	var echo bytes.Buffer
	enc, err := Start(context.Background(), Options{Binary: sh, Echo: &echo}, []string{"-c", script})
	require.NoError(t, err)

	var got []float64
	for v, err := range enc.Progress().All() {
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []float64{1, 2.5}, got)
	require.NoError(t, enc.Wait())
	assert.Contains(t, echo.String(), "banner")
}

func TestStart_FailureCarriesTail(t *testing.T) {
	sh := shell(t)
	script := `printf 'x.mkv: No such file or directory\n' >&2; exit 3`
	enc, err := Start(context.Background(), Options{Binary: sh}, []string{"-c", script})
	require.NoError(t, err)

	_, err = enc.Progress().Next()
	assert.ErrorIs(t, err, io.EOF)

	err = enc.Wait()
	var encErr *EncodeError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, 3, encErr.ExitCode())
	assert.Contains(t, encErr.Tail, "No such file")
	assert.Contains(t, err.Error(), "input could not be read")
	assert.Same(t, err, enc.Wait())
}

func TestStart_DrainsAfterEndMarker(t *testing.T) {
	sh := shell(t)
	// Plenty of output after the end marker must not block the process.
	script := `printf 'time=00:00:01.00\rdone\r' >&2; i=0; while [ $i -lt 2000 ]; do echo "trailing diagnostics line $i" >&2; i=$((i+1)); done`
	var echo bytes.Buffer
	enc, err := Start(context.Background(), Options{Binary: sh, Echo: &echo}, []string{"-c", script})
	require.NoError(t, err)

	v, err := enc.Progress().Next()
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
	_, err = enc.Progress().Next()
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, enc.Wait())
	assert.Contains(t, enc.Stderr(), "trailing diagnostics line 1999")
	assert.Contains(t, echo.String(), "trailing diagnostics line 1999")
}

func TestEncode_CloseKillsProcess(t *testing.T) {
	sh := shell(t)
	enc, err := Start(context.Background(), Options{Binary: sh}, []string{"-c", "printf 'time=00:00:01.00\r' >&2; exec sleep 30"})
	require.NoError(t, err)

	_, err = enc.Progress().Next()
	require.NoError(t, err)

	err = enc.Close()
	var encErr *EncodeError
	assert.True(t, errors.As(err, &encErr))
}

func TestStart_MissingBinary(t *testing.T) {
	_, err := Start(context.Background(), Options{Binary: "fftrim-test-no-such-ffmpeg"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, exec.ErrNotFound)
}
