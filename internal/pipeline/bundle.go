package pipeline

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"

	"stockcount/internal"
)

func BundleName(today internal.Date) string {
	return fmt.Sprintf("Stock_Reports_%s.zip", today)
}

// BundleReports packs the generated reports into one archive next to them.
func BundleReports(files []internal.ReportFile, zipPath string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)
	for _, rf := range files {
		blob, err := os.ReadFile(rf.Path)
		if err != nil {
			_ = zw.Close()
			_ = out.Close()
			return err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: filepath.Base(rf.Path), Method: zip.Deflate})
		if err != nil {
			_ = zw.Close()
			_ = out.Close()
			return err
		}
		if _, err := w.Write(blob); err != nil {
			_ = zw.Close()
			_ = out.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
