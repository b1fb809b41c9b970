package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/geoshell/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites script source before it is handed to zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: radius-of -> radius_of
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
// Semicolon comments are rewritten to the // form zygomys understands.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a scene.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   scene.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(ref %q)", n.name)
	}
	return fmt.Sprintf("(ref %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			// Trailing keyword with no value.
			result.kw[name] = zygo.SexpNull
			i++
		}
	}
	return result
}

// floatArg reads an optional numeric keyword into dst.
func (a kwArgs) floatArg(key string, dst *float64) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

// intArg reads an optional integer keyword into dst.
func (a kwArgs) intArg(key string, dst *int) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	n, err := toInt(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

// axisArg reads an optional :pole keyword into dst.
func (a kwArgs) axisArg(key string, dst *scene.Axis) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	ax, err := toAxis(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = ax
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer that fits in 32 bits. Floats are accepted only
// when integral.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		if v.Val > math.MaxInt32 || v.Val < math.MinInt32 {
			return 0, fmt.Errorf("integer %d out of range", v.Val)
		}
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val != math.Trunc(v.Val) {
			return 0, fmt.Errorf("expected integer, got %g", v.Val)
		}
		if v.Val > math.MaxInt32 || v.Val < math.MinInt32 {
			return 0, fmt.Errorf("integer %g out of range", v.Val)
		}
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toAxis converts :z or :x to a pole axis.
func toAxis(s zygo.Sexp) (scene.Axis, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, err
	}
	switch name {
	case "z":
		return scene.AxisZ, nil
	case "x":
		return scene.AxisX, nil
	}
	return 0, fmt.Errorf("unknown axis %q, expected :z or :x", name)
}

// toNodeRef extracts a node reference produced by shell, lens, ref, place
// or model.
func toNodeRef(s zygo.Sexp) (*sexpNodeRef, error) {
	if r, ok := s.(*sexpNodeRef); ok {
		return r, nil
	}
	return nil, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a vector produced by vec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// addNamed inserts a named node, rejecting names already in use.
func addNamed(s *scene.Scene, fn string, n *scene.Node) (zygo.Sexp, error) {
	if s.Lookup(n.Name) != nil {
		return zygo.SexpNull, fmt.Errorf("%s: name %q already defined", fn, n.Name)
	}
	s.AddNode(n)
	return &sexpNodeRef{id: n.ID, name: n.Name}, nil
}

// surfaceName reads the leading name argument of shell and lens.
func surfaceName(fn string, pa kwArgs) (string, error) {
	if len(pa.positional) < 1 {
		return "", fmt.Errorf("%s requires a name argument", fn)
	}
	name, err := toString(pa.positional[0])
	if err != nil {
		return "", fmt.Errorf("%s: name: %w", fn, err)
	}
	if name == "" {
		return "", fmt.Errorf("%s: name must not be empty", fn)
	}
	return name, nil
}

// registerBuiltins installs the head-model builtins into a zygomys
// environment. The builtins populate s as the script runs.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *scene.Scene) {
	// placements counts place calls per child so repeated placements of the
	// same surface still get distinct, deterministic ids.
	placements := make(map[string]int)

	// -----------------------------------------------------------------------
	// (defaults :frequency 8)
	// -----------------------------------------------------------------------
	env.AddFunction("defaults", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		f := s.Defaults.Frequency
		if err := pa.intArg("frequency", &f); err != nil {
			return zygo.SexpNull, fmt.Errorf("defaults: %w", err)
		}
		if f < 1 {
			return zygo.SexpNull, fmt.Errorf("defaults: frequency must be at least 1, got %d", f)
		}
		s.Defaults.Frequency = f
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (shell "scalp" :radius 1.0 :frequency 8 :pole :z)
	// -----------------------------------------------------------------------
	env.AddFunction("shell", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		shellName, err := surfaceName("shell", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		sd := scene.ShellData{Frequency: s.Defaults.Frequency}
		if _, ok := pa.kw["radius"]; !ok {
			return zygo.SexpNull, fmt.Errorf("shell %q: radius is required", shellName)
		}
		if err := pa.floatArg("radius", &sd.Radius); err != nil {
			return zygo.SexpNull, fmt.Errorf("shell: %w", err)
		}
		if err := pa.intArg("frequency", &sd.Frequency); err != nil {
			return zygo.SexpNull, fmt.Errorf("shell: %w", err)
		}
		if err := pa.axisArg("pole", &sd.Pole); err != nil {
			return zygo.SexpNull, fmt.Errorf("shell: %w", err)
		}

		return addNamed(s, "shell", &scene.Node{
			ID:   scene.NewNodeID("shell/" + shellName),
			Kind: scene.NodeShell,
			Name: shellName,
			Data: sd,
		})
	})

	// -----------------------------------------------------------------------
	// (lens "blin" :half-thickness h :base-radius r :half-angle a
	//              :frequency 8 :pole :z)
	// -----------------------------------------------------------------------
	env.AddFunction("lens", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		lensName, err := surfaceName("lens", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		ld := scene.LensData{Frequency: s.Defaults.Frequency}
		for _, key := range []string{"half-thickness", "base-radius", "half-angle"} {
			if _, ok := pa.kw[key]; !ok {
				return zygo.SexpNull, fmt.Errorf("lens %q: %s is required", lensName, key)
			}
		}
		if err := pa.floatArg("half-thickness", &ld.HalfThickness); err != nil {
			return zygo.SexpNull, fmt.Errorf("lens: %w", err)
		}
		if err := pa.floatArg("base-radius", &ld.BaseRadius); err != nil {
			return zygo.SexpNull, fmt.Errorf("lens: %w", err)
		}
		if err := pa.floatArg("half-angle", &ld.HalfAngle); err != nil {
			return zygo.SexpNull, fmt.Errorf("lens: %w", err)
		}
		if err := pa.intArg("frequency", &ld.Frequency); err != nil {
			return zygo.SexpNull, fmt.Errorf("lens: %w", err)
		}
		if err := pa.axisArg("pole", &ld.Pole); err != nil {
			return zygo.SexpNull, fmt.Errorf("lens: %w", err)
		}

		return addNamed(s, "lens", &scene.Node{
			ID:   scene.NewNodeID("lens/" + lensName),
			Kind: scene.NodeLens,
			Name: lensName,
			Data: ld,
		})
	})

	// -----------------------------------------------------------------------
	// (ref "brain")
	// -----------------------------------------------------------------------
	env.AddFunction("ref", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("ref requires exactly 1 argument, got %d", len(args))
		}
		refName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ref: name: %w", err)
		}
		n := s.Lookup(refName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("ref: no node named %q", refName)
		}
		return &sexpNodeRef{id: n.ID, name: refName}, nil
	})

	// -----------------------------------------------------------------------
	// (radius-of "skull")
	//
	// Registered as "radius_of"; the preprocessor rewrites the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("radius_of", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("radius-of requires exactly 1 argument, got %d", len(args))
		}
		var n *scene.Node
		if r, ok := args[0].(*sexpNodeRef); ok {
			n = s.Get(r.id)
		} else {
			refName, err := toString(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("radius-of: %w", err)
			}
			n = s.Lookup(refName)
			if n == nil {
				return zygo.SexpNull, fmt.Errorf("radius-of: no node named %q", refName)
			}
		}
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("radius-of: dangling reference")
		}
		switch d := n.Data.(type) {
		case scene.ShellData:
			return &zygo.SexpFloat{Val: d.Radius}, nil
		case scene.LensData:
			return &zygo.SexpFloat{Val: d.BaseRadius}, nil
		}
		return zygo.SexpNull, fmt.Errorf("radius-of: %q is a %s, not a surface", n.DisplayName(), n.Kind)
	})

	// -----------------------------------------------------------------------
	// (vec3 x y z)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (place (ref "brain") :at (vec3 0 0 0.1) :scale 1.5)
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a node reference as first argument")
		}
		child, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		td := scene.TransformData{}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			td.Translation = &vec
		}
		if _, ok := pa.kw["scale"]; ok {
			var sc float64
			if err := pa.floatArg("scale", &sc); err != nil {
				return zygo.SexpNull, fmt.Errorf("place: %w", err)
			}
			td.Scale = &sc
		}

		key := child.id.String()
		if c := s.Get(child.id); c != nil {
			key = c.DisplayName()
		}
		placements[key]++
		id := scene.NewNodeID(fmt.Sprintf("place/%s/%d", key, placements[key]))

		s.AddNode(&scene.Node{
			ID:       id,
			Kind:     scene.NodeTransform,
			Children: []scene.NodeID{child.id},
			Data:     td,
		})
		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (model "eeg" (ref "brain") (place ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("model", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("model requires a name argument")
		}
		modelName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("model: name: %w", err)
		}

		var children []scene.NodeID
		for i := 1; i < len(args); i++ {
			ref, ok := args[i].(*sexpNodeRef)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("model: child %d: expected node reference, got %T (%s)",
					i, args[i], args[i].SexpString(nil))
			}
			children = append(children, ref.id)
		}

		return addNamed(s, "model", &scene.Node{
			ID:       scene.NewNodeID("model/" + modelName),
			Kind:     scene.NodeGroup,
			Name:     modelName,
			Children: children,
			Data:     scene.GroupData{},
		})
	})
}
