package stem

import (
	"strings"
)

// Bucket names one section of a generated program.
type Bucket int

const (
	Data Bucket = iota
	TransDataDecl
	TransDataDef
	ParamDecl
	TransDecl
	TransDef
	ModelDecl
	ModelDef
	numBuckets
)

var bucketNames = [numBuckets]string{
	"data", "trans_data_decl", "trans_data_def", "param_decl",
	"trans_decl", "trans_def", "model_decl", "model_def",
}

func (b Bucket) String() string {
	if b < 0 || b >= numBuckets {
		return "none"
	}
	return bucketNames[b]
}

// Fragment holds newline-terminated program lines per bucket. The zero value
// is the empty fragment, the identity of Compose.
type Fragment struct {
	buckets [numBuckets]string
}

// Get returns the text of one bucket.
func (f Fragment) Get(b Bucket) string { return f.buckets[b] }

// Lines returns the lines of one bucket.
func (f Fragment) Lines(b Bucket) []string {
	text := strings.TrimSuffix(f.buckets[b], "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}


// Append adds a line to a bucket.
func (f *Fragment) Append(b Bucket, line string) {
	f.buckets[b] += line + "\n"
}

// Compose concatenates fragments bucket by bucket, in argument order.
func Compose(fragments ...Fragment) Fragment {
	var out Fragment
	var sb strings.Builder
	for b := range out.buckets {
		sb.Reset()
		for _, f := range fragments {
			sb.WriteString(f.buckets[b])
		}
		out.buckets[b] = sb.String()
	}
	return out
}

const indent = blockIndent

// Render produces a complete program: the functions preamble followed by the
// five program blocks, declarations before definitions.
func (f Fragment) Render(functions string) string {
	var sb strings.Builder
	if functions != "" {
		sb.WriteString(strings.TrimRight(functions, "\n"))
		sb.WriteString("\n")
	}

	block := func(header string, extra []string, buckets ...Bucket) {
		sb.WriteString(header + " {\n")
		for _, line := range extra {
			sb.WriteString(indent + line + "\n")
		}
		for _, b := range buckets {
			for _, line := range f.Lines(b) {
				sb.WriteString(indent + line + "\n")
			}
		}
		sb.WriteString("}\n")
	}

	block("data", nil, Data)
	block("transformed data", []string{"real delta = 1e-8;"}, TransDataDecl, TransDataDef)
	block("parameters", nil, ParamDecl)
	block("transformed parameters", nil, TransDecl, TransDef)
	block("model", nil, ModelDecl, ModelDef)
	return sb.String()
}
