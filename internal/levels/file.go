package levels

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/ftrvxmtrx/tga"
)

// BackupPath returns the path the pre-transform copy is written to:
// "armor_s.png" backs up to "armor_s_original.png".
func BackupPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_original" + ext
}

// AdjustFile applies the red/green remap to a PNG or TGA file in place.
//
// The original is copied to its backup path before anything else touches it.
// Decode, transform and re-encode all happen after the backup exists, so a
// failure at any point leaves the backup intact and reports an error without
// having destroyed the source's original content.
func AdjustFile(path string, red, green Channel) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".png" && ext != ".tga" {
		return fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedImage)
	}

	if err := copyFile(path, BackupPath(path)); err != nil {
		return fmt.Errorf("backing up %s: %w", filepath.Base(path), err)
	}

	img, err := decode(path, ext)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}

	out := Adjust(img, red, green)

	if err := encode(path, ext, out); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func decode(path, ext string) (image.Image, error) {
	if ext == ".tga" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return tga.Decode(f)
	}
	return imgio.Open(path)
}

func encode(path, ext string, img image.Image) error {
	if ext == ".tga" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := tga.Encode(f, img); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return imgio.Save(path, img, imgio.PNGEncoder())
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
