package hal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"
)

// Transducer types used in XDR sentences.
const (
	xdrTemperature = "C"
	xdrHumidity    = "H"
)

// SerialClimateSensor reads temperature and humidity from a sensor bridge
// that streams NMEA 0183 XDR transducer sentences over a serial port, e.g.
//
//	$WIXDR,C,23.4,C,TEMP,H,51.2,P,HUM*hh
type SerialClimateSensor struct {
	port        string // Serial port the bridge is attached to
	baudRate    int    // Baud rate for the serial communication
	readTimeout time.Duration
}

// NewSerialClimateSensor creates a sensor reading from port at baudRate.
func NewSerialClimateSensor(port string, baudRate int, readTimeout time.Duration) *SerialClimateSensor {
	if readTimeout <= 0 {
		readTimeout = 2 * time.Second
	}
	return &SerialClimateSensor{
		port:        port,
		baudRate:    baudRate,
		readTimeout: readTimeout,
	}
}

// maxSentences bounds how many lines one Read scans before giving up on a
// bridge that never reports both measurements.
const maxSentences = 32

// Read opens the port and scans sentences until both a temperature and a
// humidity measurement were seen. It gives up with ErrNoReading after
// maxSentences lines or four read timeouts, whichever comes first.
func (s *SerialClimateSensor) Read(ctx context.Context) (Climate, error) {
	c := &serial.Config{Name: s.port, Baud: s.baudRate, ReadTimeout: s.readTimeout}
	p, err := serial.OpenPort(c)
	if err != nil {
		return FailedClimate(), fmt.Errorf("open %s: %w", s.port, err)
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(ctx, 4*s.readTimeout)
	defer cancel()

	return scanClimate(ctx, p)
}

func scanClimate(ctx context.Context, r io.Reader) (Climate, error) {
	climate := FailedClimate()
	var haveTemp, haveHum bool

	scanner := bufio.NewScanner(r)
	for n := 0; n < maxSentences && scanner.Scan(); n++ {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return FailedClimate(), ErrNoReading
			}
			return FailedClimate(), err
		}

		t, h, err := ParseClimateSentence(scanner.Text())
		if err != nil {
			continue
		}
		if t != nil {
			climate.Temperature = *t
			haveTemp = true
		}
		if h != nil {
			climate.Humidity = *h
			haveHum = true
		}
		if haveTemp && haveHum {
			return climate, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return FailedClimate(), err
	}
	return FailedClimate(), ErrNoReading
}

func (s *SerialClimateSensor) Close() error { return nil }

// ParseClimateSentence extracts temperature and humidity from an XDR
// sentence. Either result is nil when the sentence does not carry it.
func ParseClimateSentence(line string) (temperature, humidity *float64, err error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") || !strings.Contains(line, "XDR") {
		return nil, nil, fmt.Errorf("not an XDR sentence: %q", line)
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return nil, nil, err
	}

	xdr, ok := sentence.(nmea.XDR)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected sentence type %s", sentence.DataType())
	}

	for _, m := range xdr.Measurements {
		v := m.Value
		switch m.TransducerType {
		case xdrTemperature:
			temperature = &v
		case xdrHumidity:
			humidity = &v
		}
	}
	return temperature, humidity, nil
}
