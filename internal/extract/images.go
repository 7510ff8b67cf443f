package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	// Decoders for the raster formats pdfcpu hands back.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/tiff"

	"github.com/karan4533/pdf-to-xml-converter/internal/extract/ocr"
)

// maxUsableChannels mirrors the color-model filter: grayscale and RGB-family
// rasters pass, anything with five or more channels (e.g. CMYK plus alpha)
// is dropped without error.
const maxUsableChannels = 5

// imageExtractor normalizes embedded page images: decode, color-model
// filter, conditional OCR, PNG re-encode, stable identifier assignment.
type imageExtractor struct {
	engine ocr.Engine // nil when OCR is unavailable
	logger *slog.Logger
}

// extract returns the accepted images grouped by page in ascending page
// order, plus the number of enumerated images that were skipped.
func (x *imageExtractor) extract(ctx context.Context, path string) ([]Image, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pdfCtx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, 0, fmt.Errorf("read pdf: %w", err)
	}

	var images []Image
	skipped := 0

	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		pageImages, err := pdfcpu.ExtractPageImages(pdfCtx, pageNr, false)
		if err != nil {
			x.logger.Warn("image enumeration failed for page", "page", pageNr, "error", err)
			continue
		}

		// Map order is random; object numbers give the page's native
		// enumeration order.
		objNrs := make([]int, 0, len(pageImages))
		for objNr := range pageImages {
			objNrs = append(objNrs, objNr)
		}
		sort.Ints(objNrs)

		for index, objNr := range objNrs {
			img, ok := x.normalize(ctx, pageImages[objNr], pageNr, index+1)
			if !ok {
				skipped++
				continue
			}
			images = append(images, img)
		}
	}

	return images, skipped, nil
}

// normalize decodes one raw image and builds the Image record. A decode
// failure or a filtered color model yields ok=false; the index is consumed
// either way so identifiers reflect the enumeration position.
func (x *imageExtractor) normalize(ctx context.Context, raw model.Image, pageNr, index int) (Image, bool) {
	data, err := io.ReadAll(raw)
	if err != nil {
		x.logger.Warn("reading image stream failed", "page", pageNr, "index", index, "error", err)
		return Image{}, false
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		x.logger.Warn("decoding image failed", "page", pageNr, "index", index, "error", err)
		return Image{}, false
	}

	if channelCount(decoded) >= maxUsableChannels {
		x.logger.Debug("skipping image with unsupported color model", "page", pageNr, "index", index)
		return Image{}, false
	}

	bounds := decoded.Bounds()
	ocrText := x.recognize(ctx, decoded, pageNr, index)

	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		x.logger.Warn("png encoding failed", "page", pageNr, "index", index, "error", err)
		return Image{}, false
	}

	return Image{
		ID:         fmt.Sprintf("img_%d_%d", pageNr, index),
		Page:       pageNr,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		OCRText:    ocrText,
		Base64Data: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Format:     "PNG",
	}, true
}

// recognize resolves the three-way OCR outcome: unavailable engine,
// per-image failure, or trimmed recognized text. A failure here is local to
// the image and never aborts the document.
func (x *imageExtractor) recognize(ctx context.Context, img image.Image, pageNr, index int) string {
	if x.engine == nil {
		return OCRNotAvailableText
	}
	text, err := x.engine.Recognize(ctx, img)
	if err != nil {
		x.logger.Warn("ocr failed for image", "page", pageNr, "index", index, "error", err)
		return OCRFailedText
	}
	return text
}

// channelCount maps a decoded image's color model to its channel count.
// Unknown models count as 5 so they fall on the skipped side of the filter.
func channelCount(img image.Image) int {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return 1
	case color.AlphaModel, color.Alpha16Model:
		return 2
	case color.YCbCrModel:
		return 3
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model, color.NYCbCrAModel:
		return 4
	case color.CMYKModel:
		return 4
	}
	if _, ok := img.(*image.Paletted); ok {
		return 3
	}
	return maxUsableChannels
}
