package gosource

import (
	"errors"
	"strings"
	"testing"

	"github.com/skovand/redline/internal/apply"
)

const webSrc = `package web

import "fmt"

// Greet prints a greeting.
func Greet(name string) {
	fmt.Println("hello", name)
}

type Server struct {
	Host string
}

func (s *Server) Start() error {
	return nil
}
`

func TestReplaceFunction(t *testing.T) {
	ce, err := ReplaceFunction(webSrc, "Greet", "func Greet(name string) {\n\tfmt.Println(\"hi\", name)\n}\n")
	if err != nil {
		t.Fatalf("ReplaceFunction returned error: %v", err)
	}

	got, err := apply.ApplyContextEdit(webSrc, ce)
	if err != nil {
		t.Fatalf("descriptor did not apply: %v", err)
	}
	if !strings.Contains(got, `fmt.Println("hi", name)`) {
		t.Errorf("new body missing:\n%s", got)
	}
	if strings.Contains(got, `"hello"`) {
		t.Errorf("old body still present:\n%s", got)
	}
	if !strings.Contains(got, "// Greet prints a greeting.") {
		t.Errorf("doc comment was not preserved:\n%s", got)
	}
}

func TestReplaceFunctionMethod(t *testing.T) {
	newDecl := "func (s *Server) Start() error {\n\treturn fmt.Errorf(\"boom\")\n}"
	ce, err := ReplaceFunction(webSrc, "Server.Start", newDecl)
	if err != nil {
		t.Fatalf("ReplaceFunction returned error: %v", err)
	}
	if ce.Target != "func (s *Server) Start() error {\n\treturn nil\n}" {
		t.Errorf("unexpected target: %q", ce.Target)
	}

	got, err := apply.ApplyContextEdit(webSrc, ce)
	if err != nil {
		t.Fatalf("descriptor did not apply: %v", err)
	}
	if !strings.Contains(got, `return fmt.Errorf("boom")`) {
		t.Errorf("new body missing:\n%s", got)
	}
}

func TestReplaceFunctionBareMethodName(t *testing.T) {
	// Only one receiver declares Start, so the bare name resolves to it.
	ce, err := ReplaceFunction(webSrc, "Start", "func (s *Server) Start() error {\n\treturn errStopped\n}")
	if err != nil {
		t.Fatalf("ReplaceFunction returned error: %v", err)
	}
	if !strings.Contains(ce.Target, "(s *Server) Start()") {
		t.Errorf("resolved wrong declaration: %q", ce.Target)
	}
}

func TestReplaceFunctionAmbiguous(t *testing.T) {
	src := `package p

type A struct{}

func (A) String() string { return "a" }

type B struct{}

func (B) String() string { return "b" }
`
	_, err := ReplaceFunction(src, "String", "func (A) String() string { return \"x\" }")
	var ambiguous *AmbiguousError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected AmbiguousError, got %v", err)
	}
	want := []string{"A.String", "B.String"}
	if len(ambiguous.Candidates) != len(want) {
		t.Fatalf("candidates = %v, want %v", ambiguous.Candidates, want)
	}
	for i := range want {
		if ambiguous.Candidates[i] != want[i] {
			t.Errorf("candidates[%d] = %q, want %q", i, ambiguous.Candidates[i], want[i])
		}
	}
}

func TestReplaceFunctionNotFound(t *testing.T) {
	tests := []struct {
		name     string
		funcName string
		wantKind string
	}{
		{name: "plain function", funcName: "Missing", wantKind: "function"},
		{name: "method", funcName: "Server.Missing", wantKind: "method"},
		{name: "wrong receiver", funcName: "Client.Start", wantKind: "method"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReplaceFunction(webSrc, tt.funcName, "func x() {}")
			var notFound *NotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("expected NotFoundError, got %v", err)
			}
			if notFound.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", notFound.Kind, tt.wantKind)
			}
		})
	}
}

func TestReplaceFunctionParseError(t *testing.T) {
	_, err := ReplaceFunction("package p\n\nfunc broken(", "x", "y")
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAddStructField(t *testing.T) {
	ce, err := AddStructField(webSrc, "Server", "Port int")
	if err != nil {
		t.Fatalf("AddStructField returned error: %v", err)
	}

	got, err := apply.ApplyContextEdit(webSrc, ce)
	if err != nil {
		t.Fatalf("descriptor did not apply: %v", err)
	}
	want := "type Server struct {\n\tHost string\n\tPort int\n}"
	if !strings.Contains(got, want) {
		t.Errorf("struct not extended as expected:\n%s", got)
	}
}

func TestAddStructFieldEmptyStruct(t *testing.T) {
	src := "package p\n\ntype Marker struct{}\n"
	ce, err := AddStructField(src, "Marker", "Kind string")
	if err != nil {
		t.Fatalf("AddStructField returned error: %v", err)
	}

	got, err := apply.ApplyContextEdit(src, ce)
	if err != nil {
		t.Fatalf("descriptor did not apply: %v", err)
	}
	want := "type Marker struct{\n\tKind string\n}\n"
	if !strings.Contains(got, want) {
		t.Errorf("got:\n%s\nwant fragment:\n%s", got, want)
	}
}

func TestAddStructFieldNotAStruct(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "missing type", src: "package p\n"},
		{name: "non-struct type", src: "package p\n\ntype ID int\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddStructField(tt.src, "ID", "X int")
			var notFound *NotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("expected NotFoundError, got %v", err)
			}
			if notFound.Kind != "struct" {
				t.Errorf("Kind = %q, want %q", notFound.Kind, "struct")
			}
		})
	}
}

func TestAddImportExtendsBlock(t *testing.T) {
	src := `package p

import (
	"fmt"
	"os"
)

func main() { fmt.Println(os.Args) }
`
	ce, err := AddImport(src, "strings")
	if err != nil {
		t.Fatalf("AddImport returned error: %v", err)
	}

	got, err := apply.ApplyContextEdit(src, ce)
	if err != nil {
		t.Fatalf("descriptor did not apply: %v", err)
	}
	want := "import (\n\t\"fmt\"\n\t\"os\"\n\t\"strings\"\n)"
	if !strings.Contains(got, want) {
		t.Errorf("got:\n%s\nwant fragment:\n%s", got, want)
	}
}

func TestAddImportWrapsSingleImport(t *testing.T) {
	ce, err := AddImport(webSrc, "strings")
	if err != nil {
		t.Fatalf("AddImport returned error: %v", err)
	}

	got, err := apply.ApplyContextEdit(webSrc, ce)
	if err != nil {
		t.Fatalf("descriptor did not apply: %v", err)
	}
	want := "import (\n\t\"fmt\"\n\t\"strings\"\n)"
	if !strings.Contains(got, want) {
		t.Errorf("got:\n%s\nwant fragment:\n%s", got, want)
	}
}

func TestAddImportKeepsAlias(t *testing.T) {
	src := "package p\n\nimport f \"fmt\"\n\nfunc main() { f.Println() }\n"
	ce, err := AddImport(src, "strings")
	if err != nil {
		t.Fatalf("AddImport returned error: %v", err)
	}

	got, err := apply.ApplyContextEdit(src, ce)
	if err != nil {
		t.Fatalf("descriptor did not apply: %v", err)
	}
	want := "import (\n\tf \"fmt\"\n\t\"strings\"\n)"
	if !strings.Contains(got, want) {
		t.Errorf("got:\n%s\nwant fragment:\n%s", got, want)
	}
}

func TestAddImportNoImports(t *testing.T) {
	src := "package p\n\nfunc main() {}\n"
	ce, err := AddImport(src, "strings")
	if err != nil {
		t.Fatalf("AddImport returned error: %v", err)
	}

	got, err := apply.ApplyContextEdit(src, ce)
	if err != nil {
		t.Fatalf("descriptor did not apply: %v", err)
	}
	want := "package p\n\nimport \"strings\"\n\nfunc main() {}\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestAddImportAlreadyImported(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "plain", src: webSrc},
		{name: "aliased", src: "package p\n\nimport f \"fmt\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddImport(tt.src, "fmt")
			if !errors.Is(err, ErrAlreadyImported) {
				t.Errorf("expected ErrAlreadyImported, got %v", err)
			}
		})
	}
}
