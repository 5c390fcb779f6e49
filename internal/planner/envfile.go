package planner

import (
	"sort"
	"strings"
)

// RenderEnv renders the environment map as dotenv lines in sorted key order,
// so repeated renders of the same plan are byte-identical.
func (p *Plan) RenderEnv() string {
	keys := make([]string, 0, len(p.Environment))
	for k := range p.Environment {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		v := p.Environment[k]
		if strings.ContainsAny(v, " \t#\"") {
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(v, `"`, `\"`))
			b.WriteByte('"')
		} else {
			b.WriteString(v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
