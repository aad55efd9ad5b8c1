package channel

import (
	"os"
	"sync"

	"github.com/golang/glog"
	"go.bug.st/serial"
)

// DefaultBaudRate is the baud rate the device side opens the port with.
const DefaultBaudRate = 9600

// Serial implements Channel over a serial port.
//
// USB CDC ports usually disappear while the board resets, so a missing
// device node is not an error: IsReady keeps trying to open the port
// until it shows up.
type Serial struct {
	PortName string
	Mode     serial.Mode
	// WaitDSR makes the port ready only when the peer asserts DSR,
	// i.e. a host program has actually opened the other end.
	WaitDSR bool

	port serial.Port
	lock sync.Mutex
}

// NewSerial creates a Serial channel. baudRate <= 0 selects DefaultBaudRate.
func NewSerial(portName string, baudRate int) *Serial {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	return &Serial{
		PortName: portName,
		Mode: serial.Mode{
			BaudRate: baudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
	}
}

// Begin implements Channel.
func (s *Serial) Begin() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.port != nil {
		return nil
	}
	if _, err := os.Stat(s.PortName); os.IsNotExist(err) {
		glog.V(2).Infof("serial port %s not present yet", s.PortName)
		return nil
	}
	return s.open()
}

// IsReady implements Channel.
func (s *Serial) IsReady() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.port == nil {
		if err := s.open(); err != nil {
			glog.V(4).Infof("open serial port %s: %v", s.PortName, err)
			return false
		}
	}
	if !s.WaitDSR {
		return true
	}
	bits, err := s.port.GetModemStatusBits()
	if err != nil {
		glog.Warningf("serial port %s modem status: %v", s.PortName, err)
		return false
	}
	return bits.DSR
}

// WriteLine implements Channel.
func (s *Serial) WriteLine(line string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.port == nil {
		return ErrNotReady
	}
	if _, err := s.port.Write(terminate(line)); err != nil {
		// the device node is gone after a reset, reopen on next poll.
		s.port.Close()
		s.port = nil
		return err
	}
	return nil
}

// Close implements io.Closer.
func (s *Serial) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}

func (s *Serial) open() error {
	mode := s.Mode
	port, err := serial.Open(s.PortName, &mode)
	if err != nil {
		return err
	}
	glog.V(2).Infof("serial port %s opened at %d baud", s.PortName, mode.BaudRate)
	s.port = port
	return nil
}
