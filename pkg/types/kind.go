package types

import (
	"fmt"
	"strings"
)

// Kind is a classification tag from a closed, ordered vocabulary.
// KindUnknown and KindNone are reserved sentinels.
type Kind int

// Kind members. The numeric values are stable and define sort order.
const (
	KindUnknown Kind = iota - 1
	KindNone
	KindBug
	KindDark
	KindDragon
	KindElectric
	KindFairy
	KindFighting
	KindFire
	KindFlying
	KindGhost
	KindGrass
	KindGround
	KindIce
	KindNormal
	KindPoison
	KindPsychic
	KindRock
	KindSteel
	KindWater
)

// kindNames holds the canonical name for each Kind, indexed by Kind+1.
var kindNames = []string{
	"UNKNOWN",
	"NONE",
	"BUG",
	"DARK",
	"DRAGON",
	"ELECTRIC",
	"FAIRY",
	"FIGHTING",
	"FIRE",
	"FLYING",
	"GHOST",
	"GRASS",
	"GROUND",
	"ICE",
	"NORMAL",
	"POISON",
	"PSYCHIC",
	"ROCK",
	"STEEL",
	"WATER",
}

// kindByName maps canonical names back to their Kind.
var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for i, name := range kindNames {
		m[name] = Kind(i - 1)
	}
	return m
}()

// Kinds returns every member of the vocabulary in order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range kindNames {
		out[i] = Kind(i - 1)
	}
	return out
}

// Valid reports whether k is a member of the vocabulary.
func (k Kind) Valid() bool {
	return k >= KindUnknown && int(k)+1 < len(kindNames)
}

// String returns the canonical name, or "Kind(n)" for values outside the
// vocabulary.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k+1]
}

// ParseKind resolves a tag name case-insensitively. A dotted qualifier such
// as "TypeEnum.FIRE" is accepted; only the part after the last dot counts.
// Returns ErrInvalidKind for names outside the vocabulary.
func ParseKind(s string) (Kind, error) {
	name := strings.TrimSpace(s)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	k, ok := kindByName[strings.ToUpper(name)]
	if !ok {
		return KindUnknown, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
