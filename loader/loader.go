// Package loader takes generated target source (C from targets/cvm, or
// assembly from the encoder package) and turns it into something runnable:
// either a linked binary via an external toolchain, or a plain source file
// for callers that only want the text. The name and the "write artifacts,
// invoke the external toolchain, surface its stderr" shape both carry over
// from the ARM emulator's loader, which moved a parsed program from AST form
// into a runnable VM memory image; this one moves generated source from
// text into a runnable binary instead.
package loader

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Artifact is a target's generated source plus the file extension it's
// conventionally written with, used to name the temporary file handed to
// the external toolchain.
type Artifact struct {
	Source string
	Ext    string // ".c" or ".s"
}

// WriteSource writes the artifact's source to path, creating parent
// directories as needed.
func WriteSource(a Artifact, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(a.Source), 0644); err != nil { //nolint:gosec // generated source, not a secret
		return fmt.Errorf("write generated source: %w", err)
	}
	return nil
}

// BuildBinary writes the artifact to a temporary file and invokes cc (or
// whatever compiler path the --cc flag names) to link it into an
// executable at outPath. It is used for both the C target (cc compiles
// directly) and the assembly target (cc still drives the assembler and
// linker, the way invoking `cc foo.s -o foo` does).
func BuildBinary(a Artifact, cc, outPath string) error {
	tmpDir, err := os.MkdirTemp("", "lolcodec-build-*")
	if err != nil {
		return fmt.Errorf("create build temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	srcPath := filepath.Join(tmpDir, "program"+a.Ext)
	if err := os.WriteFile(srcPath, []byte(a.Source), 0644); err != nil { //nolint:gosec // generated source
		return fmt.Errorf("write generated source: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	cmd := exec.Command(cc, srcPath, "-o", outPath) //nolint:gosec // cc path is an explicit, user-controlled flag
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w\n%s", cc, err, stderr.String())
	}
	return nil
}
