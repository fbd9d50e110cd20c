// levelschema はレベル YAML の JSON Schema を出力します。エディタの補完と CI の検証に使います。
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"skirmish/server/application/config"
)

func main() {
	out := flag.String("out", "", "output path (stdout if empty)")
	flag.Parse()

	data, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "marshal schema:", err)
		os.Exit(1)
	}
	data = append(data, '\n')

	if *out == "" {
		_, _ = os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write schema:", err)
		os.Exit(1)
	}
}
