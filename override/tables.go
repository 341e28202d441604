package override

import (
	"bufio"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/jfxbuilder/java"
)

var log = commonlog.GetLogger("jfxbuilder.override")

// ParseMethodTable reads "methodName,typeParamClause" lines. Everything
// after the first comma is the clause. Lines without a comma, a name or a
// clause are skipped.
func ParseMethodTable(r io.Reader) (map[string]string, error) {
	table := make(map[string]string)
	err := eachLine(r, func(n int, line string) {
		name, clause, ok := strings.Cut(line, ",")
		name = strings.TrimSpace(name)
		clause = strings.TrimSpace(clause)
		if !ok || name == "" || clause == "" {
			log.Debug("skipping method table line", "line", n)
			return
		}
		table[name] = clause
	})
	if err != nil {
		return nil, errors.Wrap(err, "reading method table")
	}
	return table, nil
}

// ParseConstructorTable reads "ClassName: type1 param1, type2 param2" lines,
// one overload per line. Overloads keep their declared order per class.
func ParseConstructorTable(r io.Reader) (map[string][]string, error) {
	table := make(map[string][]string)
	err := eachLine(r, func(n int, line string) {
		class, args, ok := strings.Cut(line, ":")
		class = strings.TrimSpace(class)
		args = strings.TrimSpace(args)
		if !ok || class == "" {
			log.Debug("skipping constructor table line", "line", n)
			return
		}
		if _, valid := parseOverload(args); !valid {
			log.Debug("skipping malformed constructor overload", "line", n, "class", class)
			return
		}
		table[class] = append(table[class], args)
	})
	if err != nil {
		return nil, errors.Wrap(err, "reading constructor table")
	}
	return table, nil
}

// parseOverload requires every parameter to carry a type and a name.
func parseOverload(args string) ([]java.Parameter, bool) {
	params := java.ParseParameters(args)
	if len(params) == 0 {
		return nil, false
	}
	for _, p := range params {
		if p.Type == "" || p.Name == "" {
			return nil, false
		}
	}
	return params, true
}

func formatOverload(params []java.Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

func eachLine(r io.Reader, fn func(n int, line string)) error {
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fn(n, line)
	}
	return scanner.Err()
}
