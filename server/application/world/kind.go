package world

import "fmt"

// Kind はエンティティ種別の閉じた列挙です。追加したら kindNames と behavior の登録表も更新すること。
type Kind uint8

const (
	KindPatroller Kind = iota
	KindRangedGuardian
	KindCaster
	KindHeavy
	KindFlyingBoss
	KindPursuitBoss
	KindTurret

	KindCount
)

var kindNames = [KindCount]string{
	KindPatroller:      "patroller",
	KindRangedGuardian: "ranged-guardian",
	KindCaster:         "caster",
	KindHeavy:          "heavy",
	KindFlyingBoss:     "flying-boss",
	KindPursuitBoss:    "pursuit-boss",
	KindTurret:         "turret",
}

func (k Kind) String() string {
	if k < KindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) Valid() bool { return k < KindCount }

func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Kinds は全種別を列挙順に返します。
func Kinds() []Kind {
	out := make([]Kind, 0, KindCount)
	for k := Kind(0); k < KindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Category は衝突判定の優先順位を決める分類です。
type Category uint8

const (
	CategoryHostile Category = iota
	CategoryBoss
	CategoryExtraBoss
	CategoryStructure
)

var categoryNames = map[Category]string{
	CategoryHostile:   "hostile",
	CategoryBoss:      "boss",
	CategoryExtraBoss: "extra-boss",
	CategoryStructure: "structure",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// IsBoss は接触ダメージを持つボス級かどうかです。
func (c Category) IsBoss() bool { return c == CategoryBoss || c == CategoryExtraBoss }

// Targetable はタレットの射撃対象になる分類かどうかです。
func (c Category) Targetable() bool { return c != CategoryStructure }

// CollisionOrder は味方弾が判定する順序です。最初に当たった分類で弾は消費されます。
var CollisionOrder = [...]Category{CategoryHostile, CategoryBoss, CategoryExtraBoss}
