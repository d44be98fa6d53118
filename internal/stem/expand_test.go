// internal/stem/expand_test.go
package stem

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_SingleConfigSentinel(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := "data {\n    $config scale .prior_sd;\n}\n"

	// --- Act ---
	res, err := Expand("single", src, "alpha", nil)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"real<lower=0> alpha__prior_sd;"}, res.Fragment.Lines(Data))
	require.Len(t, res.ConfigParameters, 1)
	assert.Equal(t, "alpha__prior_sd", res.ConfigParameters[0].Name)
	assert.Equal(t, "scale", res.ConfigParameters[0].DataType)
	assert.Equal(t, 1.0, res.ConfigParameters[0].Default)
	assert.Empty(t, res.CoreParameters)
}

func TestExpand_IsPure(t *testing.T) {
	t.Parallel()

	src := `parameters {
#if centered && contains(["a", "b"], kind)
    $core vector[@{size}] ..;
#else
    real .z;
#endif
}`
	env := Env{"centered": true, "kind": "b", "size": 3}

	first, err := Expand("pure", src, "beta", env)
	require.NoError(t, err)
	second, err := Expand("pure", src, "beta", env)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, cmp.AllowUnexported(Fragment{})); diff != "" {
		t.Errorf("expansion is not deterministic (-first +second):\n%s", diff)
	}
	assert.Equal(t, "vector[3] beta;\n", first.Fragment.Get(ParamDecl))
	assert.Equal(t, []string{"beta"}, first.CoreParameters)
}

func TestExpand_Conditionals(t *testing.T) {
	t.Parallel()

	src := `model {
#if anchor == "first"
    first;
#elif anchor == "last"
    last;
#if nested
    nested_last;
#endif
#else
    none;
#endif
    always;
}`

	testCases := []struct {
		name     string
		env      Env
		expected []string
	}{
		{name: "first arm", env: Env{"anchor": "first", "nested": true}, expected: []string{"first;", "always;"}},
		{name: "elif arm with nested", env: Env{"anchor": "last", "nested": true}, expected: []string{"last;", "nested_last;", "always;"}},
		{name: "elif arm without nested", env: Env{"anchor": "last", "nested": false}, expected: []string{"last;", "always;"}},
		{name: "else arm", env: Env{"anchor": "none", "nested": true}, expected: []string{"none;", "always;"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Expand("cond", src, "ns", tc.env)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, res.Fragment.Lines(ModelDecl))
		})
	}
}

func TestExpand_DiscardedArmsRecordNothing(t *testing.T) {
	t.Parallel()

	src := `data {
#if false
    $config real .hidden;
#endif
}
parameters {
#if false
    $core real .hidden;
#endif
}`
	res, err := Expand("discard", src, "ns", nil)
	require.NoError(t, err)
	assert.Equal(t, Fragment{}, res.Fragment)
	assert.Empty(t, res.ConfigParameters)
	assert.Empty(t, res.CoreParameters)
}

func TestExpand_BucketsAndDefinitions(t *testing.T) {
	t.Parallel()

	src := `dropped before any block;
transformed data {
    int .k = 2;
    // !definitions
    print(.k);
}
also dropped;
transformed parameters {
    real ..;
    // !definitions
    .. = exp(.raw);
    for (n in 1:N) {
        x[n] = n;
    }
}
model {
    // !definitions
    .raw ~ std_normal();
}
parameters {

    $core array[3] real .raw;
}`

	res, err := Expand("buckets", src, "p", nil)
	require.NoError(t, err)

	f := res.Fragment
	assert.Equal(t, []string{"int p__k = 2;"}, f.Lines(TransDataDecl))
	assert.Equal(t, []string{"print(p__k);"}, f.Lines(TransDataDef))
	assert.Equal(t, []string{"real p;"}, f.Lines(TransDecl))
	assert.Equal(t, []string{"p = exp(p__raw);", "for (n in 1:N) {", "    x[n] = n;", "}"}, f.Lines(TransDef))
	assert.Empty(t, f.Lines(ModelDecl))
	assert.Equal(t, []string{"p__raw ~ std_normal();"}, f.Lines(ModelDef))
	assert.Equal(t, []string{"array[3] real p__raw;"}, f.Lines(ParamDecl))
	assert.Equal(t, []string{"p__raw"}, res.CoreParameters)
	assert.Empty(t, f.Lines(Data))
}

func TestExpand_ResolutionOrder(t *testing.T) {
	t.Parallel()

	src := "model {\n    .@suffix = @{name} + ..;\n    @{\"a.b\"};\n}"
	res, err := Expand("order", src, "ns", Env{"suffix": "sd", "name": "other"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ns__sd = other + ns;", "a.b;"}, res.Fragment.Lines(ModelDecl))
}

func TestExpand_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		src      string
		env      Env
		wantLine int
		wantMsg  string
	}{
		{name: "unterminated if", src: "data {\n#if true\nreal x;\n}", wantLine: 2, wantMsg: "matching #endif"},
		{name: "else then elif", src: "#if a\n#else\n#elif a\n#endif", env: Env{"a": true}, wantLine: 3, wantMsg: "#else cannot be followed"},
		{name: "double else", src: "#if a\n#else\n#else\n#endif", env: Env{"a": true}, wantLine: 3, wantMsg: "#else cannot be followed"},
		{name: "stray endif", src: "data {\n}\n#endif", wantLine: 3, wantMsg: "without matching #if"},
		{name: "unresolved interpolation", src: "data {\nreal @missing;\n}", wantLine: 2, wantMsg: "unresolved name"},
		{name: "unresolved condition", src: "#if nope\n#endif", wantLine: 1, wantMsg: "unresolved name"},
		{name: "condition is not bool", src: "#if size\n#endif", env: Env{"size": 2}, wantLine: 1, wantMsg: "not a bool"},
		{name: "arithmetic rejected", src: "#if size + 1 == 3\n#endif", env: Env{"size": 2}, wantLine: 1, wantMsg: "arithmetic"},
		{name: "unknown function rejected", src: "#if upper(x) == \"A\"\n#endif", env: Env{"x": "a"}, wantLine: 1, wantMsg: "upper"},
		{name: "unknown domain tag", src: "data {\n$config complex .z;\n}", wantLine: 2, wantMsg: "complex"},
		{name: "malformed config", src: "data {\n$config .z;\n}", wantLine: 2, wantMsg: "$config"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Expand(tc.name, tc.src, "ns", tc.env)
			require.Error(t, err)
			assert.Nil(t, res)

			var stemErr *Error
			require.True(t, errors.As(err, &stemErr), "expected *Error, got %T", err)
			assert.Equal(t, tc.wantLine, stemErr.Line)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestCompose(t *testing.T) {
	t.Parallel()

	var a, b Fragment
	a.Append(Data, "int a;")
	a.Append(ModelDef, "a ~ std_normal();")
	b.Append(Data, "int b;")

	got := Compose(a, Fragment{}, b)
	assert.Equal(t, "int a;\nint b;\n", got.Get(Data))
	assert.Equal(t, "a ~ std_normal();\n", got.Get(ModelDef))
	assert.Equal(t, a, Compose(Fragment{}, a), "the empty fragment is the identity")
	assert.Equal(t, a, Compose(a, Fragment{}))
}

func TestRender(t *testing.T) {
	t.Parallel()

	var f Fragment
	f.Append(Data, "int<lower=1> N;")
	f.Append(TransDef, "x = 1;")
	f.Append(TransDecl, "real x;")

	out := f.Render("functions {\n}\n")
	expected := strings.Join([]string{
		"functions {",
		"}",
		"data {",
		"    int<lower=1> N;",
		"}",
		"transformed data {",
		"    real delta = 1e-8;",
		"}",
		"parameters {",
		"}",
		"transformed parameters {",
		"    real x;",
		"    x = 1;",
		"}",
		"model {",
		"}",
		"",
	}, "\n")
	assert.Equal(t, expected, out)
}

func TestRender_KeepsNestedIndentation(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := "model {\n" +
		"    for (n in 1:N) {\n" +
		"        if (n > 1) {\n" +
		"            .y[n] ~ std_normal();\n" +
		"        }\n" +
		"\t\t.z[n] ~ std_normal();\n" +
		"    }\n" +
		"}\n"

	// --- Act ---
	res, err := Expand("nested", src, "p", nil)
	require.NoError(t, err)
	out := res.Fragment.Render("")

	// --- Assert ---
	expected := strings.Join([]string{
		"model {",
		"    for (n in 1:N) {",
		"        if (n > 1) {",
		"            p__y[n] ~ std_normal();",
		"        }",
		"        p__z[n] ~ std_normal();",
		"    }",
		"}",
		"",
	}, "\n")
	assert.Contains(t, out, expected)
	assert.Equal(t, []string{
		"for (n in 1:N) {",
		"    if (n > 1) {",
		"        p__y[n] ~ std_normal();",
		"    }",
		"    p__z[n] ~ std_normal();",
		"}",
	}, res.Fragment.Lines(ModelDecl))
}
