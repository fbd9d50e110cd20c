package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidLevel = errors.New("invalid level config")

// Load は YAML のレベルファイルを読み込み、既定値の補完と検証を行います。
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", path, err)
	}
	return Parse(data)
}

// Parse は Default() の上に YAML を重ねて読み込みます。書かれた値は 0 でもそのまま使います。
// kinds だけは種別単位で置き換わるので、0 の項目を既定の種別値で埋めます。
// 未知のキーはエラーにします。
func Parse(data []byte) (*Level, error) {
	lvl := Default()
	defaults := lvl.Kinds
	lvl.Kinds = nil

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(lvl); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode level: %w", err)
	}
	lvl.mergeKinds(defaults)

	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return lvl, nil
}

func (l *Level) mergeKinds(defaults map[string]KindSpec) {
	if l.Kinds == nil {
		l.Kinds = make(map[string]KindSpec, len(defaults))
	}
	for name, def := range defaults {
		ks, ok := l.Kinds[name]
		if !ok {
			l.Kinds[name] = def
			continue
		}
		ks.applyDefaults(def)
		l.Kinds[name] = ks
	}
}

func (k *KindSpec) applyDefaults(d KindSpec) {
	if k.Category == "" {
		k.Category = d.Category
	}
	setInt(&k.Health, d.Health)
	setFloat(&k.Speed, d.Speed)
	setFloat(&k.Radius, d.Radius)
	setFloat(&k.Scale, d.Scale)
	setFloat(&k.PatrolRadius, d.PatrolRadius)
	setFloat(&k.ChaseRange, d.ChaseRange)
	setFloat(&k.HomeThreshold, d.HomeThreshold)
	setFloat(&k.TurnRate, d.TurnRate)
	if k.Weapon == (WeaponSpec{}) {
		k.Weapon = d.Weapon
	}
}

func setInt(v *int, d int) {
	if *v == 0 {
		*v = d
	}
}

func setFloat(v *float64, d float64) {
	if *v == 0 {
		*v = d
	}
}
