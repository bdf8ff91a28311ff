package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/panbanda/remapper/pkg/source"
)

func javaSources(n int) (source.MapSource, []string) {
	src := source.MapSource{}
	var paths []string
	for i := range n {
		path := fmt.Sprintf("p/C%02d.java", i)
		src[path] = []byte(fmt.Sprintf("package p;\nclass C%02d { int f%d; }\n", i, i))
		paths = append(paths, path)
	}
	return src, paths
}

func TestParseSources(t *testing.T) {
	src, paths := javaSources(3)

	files, errs := ParseSources(context.Background(), paths, src, Options{})
	if errs != nil {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(files) != 3 {
		t.Fatalf("Expected 3 files, got %d", len(files))
	}
	for i, f := range files {
		if f.Path != paths[i] {
			t.Errorf("files[%d].Path = %s, want %s", i, f.Path, paths[i])
		}
		if f.Package != "p" {
			t.Errorf("files[%d].Package = %q", i, f.Package)
		}
		if len(f.Root.Children()) != 1 {
			t.Errorf("files[%d] has %d top-level types", i, len(f.Root.Children()))
		}
	}
}

func TestParseSources_EmptyFileList(t *testing.T) {
	files, errs := ParseSources(context.Background(), nil, source.MapSource{}, Options{})
	if files != nil || errs != nil {
		t.Errorf("Expected nil results, got %v, %v", files, errs)
	}
}

func TestParseSources_Unreadable(t *testing.T) {
	src, paths := javaSources(2)
	paths = append(paths, "p/Missing.java")

	files, errs := ParseSources(context.Background(), paths, src, Options{})
	if len(files) != 2 {
		t.Errorf("Expected 2 files, got %d", len(files))
	}
	if !errs.HasErrors() {
		t.Fatal("Expected errors for missing file")
	}
	got := errs.Sorted()
	if len(got) != 1 || got[0].Path != "p/Missing.java" {
		t.Errorf("errors = %v", got)
	}
	if !errors.Is(got[0], os.ErrNotExist) {
		t.Errorf("error %v should wrap os.ErrNotExist", got[0])
	}
}

func TestParseSources_SizeLimit(t *testing.T) {
	src := source.MapSource{
		"Small.java": []byte("class Small {}"),
		"Large.java": []byte("class Large { int a; int b; int c; int d; int e; }"),
	}
	files, errs := ParseSources(context.Background(), []string{"Large.java", "Small.java"}, src, Options{MaxSize: 20})
	if len(files) != 1 || files[0].Path != "Small.java" {
		t.Fatalf("Expected only Small.java, got %v", files)
	}
	if got := errs.Sorted(); len(got) != 1 || !errors.Is(got[0], ErrTooLarge) {
		t.Errorf("errors = %v", got)
	}
}

func TestParseSources_Progress(t *testing.T) {
	src, paths := javaSources(20)
	paths = append(paths, "Missing.java")

	var count atomic.Int32
	ParseSources(context.Background(), paths, src, Options{
		Workers:    3,
		OnProgress: func() { count.Add(1) },
	})
	if got := count.Load(); got != 21 {
		t.Errorf("progress called %d times, want 21", got)
	}
}

func TestParseSources_Cancellation(t *testing.T) {
	src, paths := javaSources(10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files, errs := ParseSources(ctx, paths, src, Options{Workers: 2})
	if len(files) != 0 {
		t.Errorf("Expected no files after cancellation, got %d", len(files))
	}
	if !errs.HasErrors() {
		t.Fatal("Expected cancellation errors")
	}
	for _, e := range errs.Sorted() {
		if !errors.Is(e, context.Canceled) {
			t.Errorf("error %v should be context.Canceled", e)
		}
	}
}

func TestParseSources_Deterministic(t *testing.T) {
	src, paths := javaSources(40)
	first, _ := ParseSources(context.Background(), paths, src, Options{Workers: 8})
	for range 3 {
		again, _ := ParseSources(context.Background(), paths, src, Options{Workers: 8})
		for i := range first {
			if first[i].Path != again[i].Path || first[i].Root.Children()[0].Text() != again[i].Root.Children()[0].Text() {
				t.Fatalf("run differs at %d", i)
			}
		}
	}
}

func TestProcessingError(t *testing.T) {
	err := ProcessingError{Path: "A.java", Err: os.ErrNotExist}
	if err.Error() != "A.java: file does not exist" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("ProcessingError should unwrap")
	}
}

func TestProcessingErrors(t *testing.T) {
	errs := &ProcessingErrors{}
	if errs.HasErrors() {
		t.Error("empty collection has errors")
	}
	if errs.Error() != "no errors" {
		t.Errorf("Error() = %q", errs.Error())
	}

	errs.Add("B.java", errors.New("boom"))
	if errs.Error() != "B.java: boom" {
		t.Errorf("Error() = %q", errs.Error())
	}
	errs.Add("A.java", errors.New("bang"))
	if got := errs.Sorted(); got[0].Path != "A.java" {
		t.Errorf("Sorted()[0] = %v", got[0])
	}

	var nilErrs *ProcessingErrors
	if nilErrs.HasErrors() || nilErrs.Sorted() != nil {
		t.Error("nil collection should be empty")
	}
}

func TestProcessingErrors_ThreadSafe(t *testing.T) {
	errs := &ProcessingErrors{}
	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs.Add(fmt.Sprintf("f%d", i), errors.New("x"))
		}()
	}
	wg.Wait()
	if len(errs.Sorted()) != 100 {
		t.Errorf("Expected 100 errors, got %d", len(errs.Sorted()))
	}
}
