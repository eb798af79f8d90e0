package keymap

// KeyReader yields raw input bytes one at a time.
// ok is false once the input stream is closed or unreadable.
type KeyReader interface {
	ReadKey() (c byte, ok bool)
}

const (
	keyEscape = 0x1b
	csiIntro  = '['
)

// Key names in All that are not a single printable byte.
var namedKeys = map[string]byte{
	"space": ' ',
}

// Final bytes of the CSI arrow-key sequences.
var arrowFinals = map[string]byte{
	"up":    'A',
	"down":  'B',
	"right": 'C',
	"left":  'D',
}

var direct, arrows = lookups(All)

// lookups indexes bindings by the byte a key sends: plain keys in direct,
// arrow keys by the final byte of their escape sequence.
func lookups(bindings []Binding) (direct, arrows map[byte]Command) {
	direct = make(map[byte]Command)
	arrows = make(map[byte]Command)
	for _, b := range bindings {
		for _, key := range b.Keys {
			if final, ok := arrowFinals[key]; ok {
				arrows[final] = b.Command
				continue
			}
			if c, ok := namedKeys[key]; ok {
				direct[c] = b.Command
				continue
			}
			if len(key) == 1 {
				direct[key[0]] = b.Command
			}
		}
	}
	return direct, arrows
}

// Translate maps a key to a command. An escape byte makes it read the rest of
// the sequence from r synchronously. ok is false when the key maps to nothing.
//
// An input stream that ends right after the escape byte is reported as Exit.
func Translate(c byte, r KeyReader) (cmd Command, ok bool) {
	if c != keyEscape {
		cmd, ok = direct[c]
		return cmd, ok
	}
	if r == nil {
		return 0, false
	}

	intro, more := r.ReadKey()
	if !more {
		return Exit, true
	}
	if intro != csiIntro {
		return 0, false
	}

	final, more := r.ReadKey()
	if !more {
		return 0, false
	}
	cmd, ok = arrows[final]
	return cmd, ok
}
