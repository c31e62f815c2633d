package pdf

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/tagexplorer/backend/pkg/loader"
	loaderio "github.com/tagexplorer/backend/pkg/loader/io"
)

func TestPDFGraphLoader_GetBase64(t *testing.T) {
	l := NewPDFGraphLoader(loaderio.NewBytesGraphFileLoader([]byte("%PDF")))
	file := loader.NewGraphFile(loader.NewGraphFileParams{ID: "1", FilePath: "a.pdf", Loader: l})

	b, err := file.GetBase64(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if b.FileType != "data:application/pdf;base64," {
		t.Fatalf("FileType = %q", b.FileType)
	}
}

func TestPDFGraphLoader_InvalidInput(t *testing.T) {
	l := NewPDFGraphLoader(loaderio.NewBytesGraphFileLoader([]byte("not a pdf")))
	file := loader.NewGraphFile(loader.NewGraphFileParams{ID: "1", FilePath: "a.pdf", Loader: l})

	_, err := file.GetText(context.Background())
	if err == nil {
		t.Fatal("expected error for invalid pdf")
	}
	if _, lookErr := exec.LookPath("pdftotext"); lookErr != nil && !errors.Is(err, ErrNoPdftotext) {
		t.Fatalf("err = %v, want ErrNoPdftotext", err)
	}
}
