package term

import (
	"bufio"
	"io"
)

// Kind identifies a decoded key event.
type Kind int

const (
	// KindRune is a printable character.
	KindRune Kind = iota
	KindBackspace
	KindEnter
	KindUp
	KindDown
	KindTab
	KindInterrupt
	// KindUnknown covers control bytes and escape sequences the editor
	// has no binding for; callers should ignore these.
	KindUnknown
)

// Key is one decoded key event with its active modifier.
type Key struct {
	Kind Kind
	Rune rune
	Ctrl bool
}

// Decoder turns a raw terminal byte stream into key events. It
// understands the VT100 arrow sequences and the usual control bytes;
// everything else surfaces as KindUnknown.
type Decoder struct {
	r *bufio.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next blocks until one key event has been read. It returns io.EOF when
// the input closes.
func (d *Decoder) Next() (Key, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return Key{}, err
	}

	switch b {
	case 0x03: // ^C arrives as a raw byte in raw mode.
		return Key{Kind: KindInterrupt, Rune: 'c', Ctrl: true}, nil
	case '\r', '\n':
		return Key{Kind: KindEnter}, nil
	case '\t':
		return Key{Kind: KindTab}, nil
	case 0x7f, 0x08:
		return Key{Kind: KindBackspace}, nil
	case 0x1b:
		return d.decodeEscape()
	}

	if b < 0x20 {
		// Other control chords, e.g. ^D. Report the letter with the
		// modifier set so callers can tell them apart if they care.
		return Key{Kind: KindUnknown, Rune: rune(b + 'a' - 1), Ctrl: true}, nil
	}

	if err := d.r.UnreadByte(); err != nil {
		return Key{}, err
	}
	r, _, err := d.r.ReadRune()
	if err != nil {
		return Key{}, err
	}
	return Key{Kind: KindRune, Rune: r}, nil
}

func (d *Decoder) decodeEscape() (Key, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		// A lone ESC at end of input.
		if err == io.EOF {
			return Key{Kind: KindUnknown, Rune: 0x1b}, nil
		}
		return Key{}, err
	}
	if b != '[' && b != 'O' {
		// ESC followed by an ordinary byte, not a CSI sequence.
		return Key{Kind: KindUnknown, Rune: rune(b)}, nil
	}

	final, err := d.r.ReadByte()
	if err != nil {
		return Key{}, err
	}
	switch final {
	case 'A':
		return Key{Kind: KindUp}, nil
	case 'B':
		return Key{Kind: KindDown}, nil
	default:
		// Left/right, home/end and friends have no editor binding.
		return Key{Kind: KindUnknown, Rune: rune(final)}, nil
	}
}
