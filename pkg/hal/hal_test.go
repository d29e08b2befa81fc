package hal

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withChecksum appends the NMEA checksum to a sentence body such as "WIXDR,...".
func withChecksum(body string) string {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return fmt.Sprintf("$%s*%02X", body, sum)
}

func TestMemoryOutput_CountsTransitions(t *testing.T) {
	out := NewMemoryOutput()

	require.NoError(t, out.Set(true))
	require.NoError(t, out.Set(true))
	require.NoError(t, out.Set(false))

	level, err := out.Get()
	require.NoError(t, err)
	assert.False(t, level)
	assert.Equal(t, 2, out.Transitions())
}

func TestSimulatedClimateSensor_Ranges(t *testing.T) {
	s := NewSimulatedClimateSensor()
	for i := 0; i < 200; i++ {
		c, err := s.Read(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, c.Temperature, 20.0)
		assert.Less(t, c.Temperature, 40.0)
		assert.GreaterOrEqual(t, c.Humidity, 30.0)
		assert.Less(t, c.Humidity, 70.0)
	}
}

func TestSimulatedClimateSensor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulatedClimateSensor().Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulatedAnalogInput_Range(t *testing.T) {
	in := NewSimulatedAnalogInput(12)
	for i := 0; i < 200; i++ {
		v, err := in.Read()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 4095)
	}
}

func TestIIOAnalogInput_ReadAndClamp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in_voltage1_raw")

	in := NewIIOAnalogInput(path, 12)

	require.NoError(t, os.WriteFile(path, []byte("1234\n"), 0600))
	v, err := in.Read()
	require.NoError(t, err)
	assert.Equal(t, 1234, v)

	require.NoError(t, os.WriteFile(path, []byte("9000\n"), 0600))
	v, err = in.Read()
	require.NoError(t, err)
	assert.Equal(t, 4095, v)

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))
	_, err = in.Read()
	assert.Error(t, err)
}

func TestIIOAnalogInput_MissingFile(t *testing.T) {
	_, err := NewIIOAnalogInput(filepath.Join(t.TempDir(), "missing"), 12).Read()
	assert.Error(t, err)
}

func TestMaxADCValue(t *testing.T) {
	assert.Equal(t, 4095, MaxADCValue(12))
	assert.Equal(t, 1023, MaxADCValue(10))
	assert.Equal(t, 4095, MaxADCValue(0))
}

func TestParseClimateSentence(t *testing.T) {
	temp, hum, err := ParseClimateSentence(withChecksum("WIXDR,C,23.4,C,TEMP,H,51.2,P,HUM"))
	require.NoError(t, err)
	require.NotNil(t, temp)
	require.NotNil(t, hum)
	assert.InDelta(t, 23.4, *temp, 1e-9)
	assert.InDelta(t, 51.2, *hum, 1e-9)
}

func TestParseClimateSentence_TemperatureOnly(t *testing.T) {
	temp, hum, err := ParseClimateSentence(withChecksum("WIXDR,C,31.0,C,TEMP"))
	require.NoError(t, err)
	require.NotNil(t, temp)
	assert.Nil(t, hum)
	assert.InDelta(t, 31.0, *temp, 1e-9)
}

func TestParseClimateSentence_Rejects(t *testing.T) {
	_, _, err := ParseClimateSentence("hello")
	assert.Error(t, err)

	_, _, err = ParseClimateSentence("$WIXDR,C,23.4,C,TEMP*00")
	assert.Error(t, err, "bad checksum")
}

// repeatReader yields line forever.
type repeatReader struct {
	line string
	off  int
}

func (r *repeatReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		c := copy(p[n:], r.line[r.off:])
		n += c
		r.off = (r.off + c) % len(r.line)
	}
	return n, nil
}

func TestScanClimate_BothMeasurements(t *testing.T) {
	stream := strings.NewReader(withChecksum("WIXDR,C,23.4,C,TEMP") + "\n" + withChecksum("WIXDR,H,51.2,P,HUM") + "\n")

	c, err := scanClimate(context.Background(), stream)
	require.NoError(t, err)
	assert.InDelta(t, 23.4, c.Temperature, 1e-9)
	assert.InDelta(t, 51.2, c.Humidity, 1e-9)
}

func TestScanClimate_TemperatureOnlyStreamGivesUp(t *testing.T) {
	stream := &repeatReader{line: withChecksum("WIXDR,C,23.4,C,TEMP") + "\n"}

	done := make(chan error, 1)
	go func() {
		c, err := scanClimate(context.Background(), stream)
		assert.True(t, math.IsNaN(c.Temperature))
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrNoReading)
	case <-time.After(2 * time.Second):
		t.Fatal("scan did not return on a temperature-only stream")
	}
}

func TestScanClimate_DeadlineExceeded(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := scanClimate(ctx, &repeatReader{line: withChecksum("WIXDR,C,23.4,C,TEMP") + "\n"})
	assert.ErrorIs(t, err, ErrNoReading)
}

func TestScanClimate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scanClimate(ctx, &repeatReader{line: withChecksum("WIXDR,C,23.4,C,TEMP") + "\n"})
	assert.ErrorIs(t, err, context.Canceled)
}
