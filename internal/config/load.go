package config

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"galp/internal/graphgen"
	"galp/internal/longestpath"
)

// Keys lists every accepted parameter name.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load reads a parameter file on top of Default. Files ending in .json are
// read as a JSON object, anything else as "key = value" lines.
func Load(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("read parameter file: %w", err)
	}
	var raw map[string]any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		raw, err = parseJSON(data)
	} else {
		raw, err = parseKeyValue(data)
	}
	if err != nil {
		return Params{}, fmt.Errorf("%s: %w", path, err)
	}

	p := Default()
	if err := Apply(&p, raw); err != nil {
		return Params{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Apply sets every key in raw. Unknown keys and malformed values fail.
func Apply(p *Params, raw map[string]any) error {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		set, ok := setters[k]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownKey, k)
		}
		if err := set(p, raw[k]); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}

func parseJSON(data []byte) (map[string]any, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
	}
	return raw, nil
}

// parseKeyValue reads "key = value" lines. Blank lines, lines starting with
// '#' or ';', and [section] headers are skipped.
func parseKeyValue(data []byte) (map[string]any, error) {
	raw := make(map[string]any)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: missing '='", ErrBadValue, lineNo)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("%w: line %d: empty key", ErrBadValue, lineNo)
		}
		raw[key] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return raw, nil
}

var setters = map[string]func(*Params, any) error{
	"problem": func(p *Params, v any) error {
		s, err := asString(v)
		p.Problem = s
		return err
	},
	"graph_type": func(p *Params, v any) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t, err := graphgen.ParseType(s)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		p.GraphType = t
		return nil
	},
	"graph_nodes": func(p *Params, v any) (err error) {
		p.GraphNodes, err = asInt(v)
		return err
	},
	"graph_p": func(p *Params, v any) (err error) {
		p.GraphP, err = asFloat64(v)
		return err
	},
	"random_seed": func(p *Params, v any) (err error) {
		p.RandomSeed, err = asInt64(v)
		return err
	},
	"graph_override_ones": func(p *Params, v any) (err error) {
		p.GraphOverrideOnes, err = asBool(v)
		return err
	},
	"nr_generations": func(p *Params, v any) (err error) {
		p.Generations, err = asInt(v)
		return err
	},
	"population_size": func(p *Params, v any) (err error) {
		p.PopulationSize, err = asInt(v)
		return err
	},
	"chromosome_length": func(p *Params, v any) (err error) {
		p.ChromosomeLength, err = asInt(v)
		return err
	},
	"mutation_probability": func(p *Params, v any) (err error) {
		p.MutationProbability, err = asFloat64(v)
		return err
	},
	"crossover_probability": func(p *Params, v any) (err error) {
		p.CrossoverProbability, err = asFloat64(v)
		return err
	},
	"convergence_threshold": func(p *Params, v any) (err error) {
		p.ConvergenceThreshold, err = asInt(v)
		return err
	},
	"nr_of_elites": func(p *Params, v any) (err error) {
		p.Elites, err = asInt(v)
		return err
	},
	"crossover_type": func(p *Params, v any) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		c, err := longestpath.ParseCrossover(s)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		p.Crossover = c
		return nil
	},
	"local_search": func(p *Params, v any) (err error) {
		p.LocalSearch, err = asBool(v)
		return err
	},
	"mutate_start": func(p *Params, v any) (err error) {
		p.MutateStart, err = asBool(v)
		return err
	},
	"fitness_a": func(p *Params, v any) (err error) {
		p.FitnessA, err = asFloat64(v)
		return err
	},
	"fitness_b": func(p *Params, v any) (err error) {
		p.FitnessB, err = asFloat64(v)
		return err
	},
	"workers": func(p *Params, v any) (err error) {
		p.Workers, err = asInt(v)
		return err
	},
	"selection": func(p *Params, v any) error {
		s, err := asString(v)
		p.Selection = s
		return err
	},
}

func asString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	default:
		return "", fmt.Errorf("%w: %v", ErrBadValue, v)
	}
}

func asInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrBadValue, x)
		}
		return int64(x), nil
	case json.Number:
		return parseInt(x.String())
	case string:
		return parseInt(x)
	default:
		return 0, fmt.Errorf("%w: %v", ErrBadValue, v)
	}
}

func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadValue, s)
	}
	return n, nil
}

func asInt(v any) (int, error) {
	n, err := asInt64(v)
	return int(n), err
}

func asFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case json.Number:
		return parseFloat(x.String())
	case string:
		return parseFloat(x)
	default:
		return 0, fmt.Errorf("%w: %v", ErrBadValue, v)
	}
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadValue, s)
	}
	return f, nil
}

func asBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case json.Number:
		return parseBool(x.String())
	case float64:
		return x != 0, nil
	case int:
		return x != 0, nil
	case string:
		return parseBool(x)
	default:
		return false, fmt.Errorf("%w: %v", ErrBadValue, v)
	}
}

func parseBool(s string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrBadValue, s)
	}
	return b, nil
}
