package compiler

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/zer0condition/pva-compiler/internal/encode"
)

func writeSource(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "in.pva")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRunProducesFixedSizeOutputFile(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "vadd r0, r1, r2\nvstore r0, [base]\n")
	outPath := filepath.Join(dir, "out.bin")

	var progress, diagnostics bytes.Buffer
	st := New(Options{
		SourcePath:     src,
		OutputPath:     outPath,
		TargetOverride: "x86-avx2",
		Verbose:        true,
		Progress:       &progress,
		Diagnostics:    &diagnostics,
	})

	res, err := st.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Phase() != PhaseEncoded {
		t.Fatalf("Phase() = %v, want PhaseEncoded", st.Phase())
	}
	if res.SkippedOps != 0 {
		t.Fatalf("SkippedOps = %d, want 0", res.SkippedOps)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(out) != encode.BufferSize {
		t.Fatalf("output size = %d, want %d", len(out), encode.BufferSize)
	}
	if progress.Len() == 0 {
		t.Fatalf("expected progress output with Verbose set")
	}
}

func TestRunRejectsUnknownTargetOverride(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "vadd r0, r1, r2\n")

	st := New(Options{
		SourcePath:     src,
		OutputPath:     filepath.Join(dir, "out.bin"),
		TargetOverride: "not-a-real-target",
	})
	if _, err := st.Run(); err == nil {
		t.Fatal("expected error for unrecognized target override")
	}
}

func TestRunFailsOnParseErrors(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "vadd r99, r1, r2\n") // out-of-range register
	outPath := filepath.Join(dir, "out.bin")

	var diagnostics bytes.Buffer
	st := New(Options{
		SourcePath:     src,
		OutputPath:     outPath,
		TargetOverride: "x86-sse",
		Diagnostics:    &diagnostics,
	})
	if _, err := st.Run(); err == nil {
		t.Fatal("expected error for malformed source")
	}
	if diagnostics.Len() == 0 {
		t.Fatal("expected a diagnostics summary to be written")
	}
	if _, statErr := os.Stat(outPath); statErr == nil {
		t.Fatal("no output file should be written on parse failure")
	}
}

func TestRunFailsOnMissingSourceFile(t *testing.T) {
	dir := t.TempDir()
	st := New(Options{
		SourcePath: filepath.Join(dir, "does-not-exist.pva"),
		OutputPath: filepath.Join(dir, "out.bin"),
	})
	if _, err := st.Run(); err == nil {
		t.Fatal("expected error for missing source file")
	}
}

func TestRunDispatchesToEachEncoderFamily(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "vadd r0, r1, r2\nvstore r0, [base]\n")

	for _, target := range []string{"x86-avx2", "arm-neon", "riscv-rvv"} {
		outPath := filepath.Join(dir, target+".bin")
		st := New(Options{SourcePath: src, OutputPath: outPath, TargetOverride: target})
		if _, err := st.Run(); err != nil {
			t.Fatalf("target %s: Run: %v", target, err)
		}
		out, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("target %s: ReadFile: %v", target, err)
		}
		if len(out) != encode.BufferSize {
			t.Fatalf("target %s: output size = %d, want %d", target, len(out), encode.BufferSize)
		}
	}
}
