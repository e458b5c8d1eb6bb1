package display

import (
	"fmt"
	"strconv"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// PCF8574 backpack pin mapping: P0=RS, P1=RW, P2=EN, P3=backlight, P4..P7=D4..D7.
const (
	pinRS        byte = 0x01
	pinEnable    byte = 0x04
	pinBacklight byte = 0x08
)

// HD44780 instructions.
const (
	cmdClear        byte = 0x01
	cmdHome         byte = 0x02
	cmdEntryMode    byte = 0x06 // increment, no shift
	cmdDisplayOn    byte = 0x0C // display on, cursor off, blink off
	cmdFunctionSet  byte = 0x28 // 4-bit bus, 2 lines, 5x8 dots
	cmdSetDDRAMAddr byte = 0x80
)

// DDRAM start address of each row on a 20x4 module.
var rowOffsets = [RowCount]byte{0x00, 0x40, 0x14, 0x54}

// BusOpener opens an I2C bus by name. i2creg.Open is the production opener.
type BusOpener func(name string) (i2c.BusCloser, error)

// LCD is an HD44780 20x4 character display behind a PCF8574 I2C backpack.
// The bus is reopened and the controller reinitialised on every Open, since
// the link is assumed unreliable.
type LCD struct {
	bus   int
	addr  uint16
	open  BusOpener
	sleep func(time.Duration)
}

var _ Target = (*LCD)(nil)

// NewLCD initialises the periph host drivers and returns an LCD on the given
// bus and 7-bit address.
func NewLCD(bus int, addr uint16) (*LCD, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	return NewLCDWithOpener(bus, addr, i2creg.Open, time.Sleep), nil
}

// NewLCDWithOpener builds an LCD with a custom bus opener and sleep function.
func NewLCDWithOpener(bus int, addr uint16, open BusOpener, sleep func(time.Duration)) *LCD {
	if sleep == nil {
		sleep = func(time.Duration) {}
	}
	return &LCD{bus: bus, addr: addr, open: open, sleep: sleep}
}

func (l *LCD) Name() string {
	return fmt.Sprintf("lcd(i2c-%d@%#02x)", l.bus, l.addr)
}

// Probe opens and initialises the display once, then releases it.
func (l *LCD) Probe() error {
	s, err := l.Open()
	if err != nil {
		return err
	}
	return s.Close()
}

// Open acquires the bus and runs the controller init sequence.
func (l *LCD) Open() (Session, error) {
	bus, err := l.open(strconv.Itoa(l.bus))
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %d: %w", l.bus, err)
	}
	s := &lcdSession{
		bus:   bus,
		dev:   &i2c.Dev{Bus: bus, Addr: l.addr},
		sleep: l.sleep,
	}
	if err := s.init(); err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("init hd44780 at %#02x: %w", l.addr, err)
	}
	return s, nil
}

type lcdSession struct {
	bus   i2c.BusCloser
	dev   *i2c.Dev
	sleep func(time.Duration)
}

func (s *lcdSession) init() error {
	s.sleep(50 * time.Millisecond)
	// Force 8-bit mode three times, then switch to 4-bit.
	for _, d := range []time.Duration{4500 * time.Microsecond, 4500 * time.Microsecond, 150 * time.Microsecond} {
		if err := s.writeNibble(0x03, 0); err != nil {
			return err
		}
		s.sleep(d)
	}
	if err := s.writeNibble(0x02, 0); err != nil {
		return err
	}

	for _, cmd := range []byte{cmdFunctionSet, cmdDisplayOn} {
		if err := s.command(cmd); err != nil {
			return err
		}
	}
	if err := s.Clear(); err != nil {
		return err
	}
	return s.command(cmdEntryMode)
}

func (s *lcdSession) Clear() error {
	if err := s.command(cmdClear); err != nil {
		return err
	}
	s.sleep(2 * time.Millisecond)
	if err := s.command(cmdHome); err != nil {
		return err
	}
	s.sleep(2 * time.Millisecond)
	return nil
}

func (s *lcdSession) WriteRow(index int, text Line) error {
	if err := checkRow(index); err != nil {
		return err
	}
	if err := s.command(cmdSetDDRAMAddr | rowOffsets[index]); err != nil {
		return err
	}
	buf := make([]byte, 0, 4*Columns)
	for _, r := range string(text) {
		buf = appendByte(buf, charCode(r), pinRS)
	}
	if len(buf) == 0 {
		return nil
	}
	_, err := s.dev.Write(buf)
	return err
}

func (s *lcdSession) Close() error {
	return s.bus.Close()
}

func (s *lcdSession) command(b byte) error {
	_, err := s.dev.Write(appendByte(nil, b, 0))
	return err
}

func (s *lcdSession) writeNibble(n byte, mode byte) error {
	_, err := s.dev.Write(appendNibble(nil, n, mode))
	return err
}

// appendByte encodes b as two 4-bit transfers, high nibble first.
func appendByte(buf []byte, b byte, mode byte) []byte {
	buf = appendNibble(buf, b>>4, mode)
	return appendNibble(buf, b&0x0F, mode)
}

// appendNibble latches one nibble with an enable pulse.
func appendNibble(buf []byte, n byte, mode byte) []byte {
	v := n<<4 | mode | pinBacklight
	return append(buf, v|pinEnable, v)
}

// charCode maps a rune to the HD44780 A00 character ROM. Only printable
// ASCII is passed through.
func charCode(r rune) byte {
	if r < 0x20 || r > 0x7D {
		return '?'
	}
	return byte(r)
}
