package config

import "github.com/invopop/jsonschema"

// Schema はレベルファイルの JSON Schema を返します。エディタ補完用です。
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	s := r.Reflect(&Level{})
	s.Title = "skirmish level"
	return s
}
