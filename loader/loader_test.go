package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lookbusy1344/arm-emulator/loader"
)

func TestWriteSourceCreatesFileAndDirectories(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "program.c")

	err := loader.WriteSource(loader.Artifact{Source: "int main(void){return 0;}", Ext: ".c"}, out)
	if err != nil {
		t.Fatalf("WriteSource: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "int main(void){return 0;}" {
		t.Fatalf("unexpected file contents: %s", got)
	}
}

func TestBuildBinaryReportsCompilerFailure(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "program")

	err := loader.BuildBinary(loader.Artifact{Source: "not valid C", Ext: ".c"}, "cc", out)
	if err == nil {
		t.Fatal("expected an error from a failing compile")
	}
}

func TestBuildBinaryRejectsMissingCompiler(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "program")

	err := loader.BuildBinary(loader.Artifact{Source: "int main(void){return 0;}", Ext: ".c"}, "lolcodec-definitely-not-a-real-compiler", out)
	if err == nil {
		t.Fatal("expected an error when the compiler binary does not exist")
	}
}
