package model

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/YuminosukeSato/salesml/pkg/errors"
)

// SaveWeights はModelWeightsをJSONファイルに保存する。
// パスが ".xz" で終わる場合はxz圧縮して保存する。
//
//	weights, _ := svr.ExportWeights()
//	err := model.SaveWeights(weights, "svr.json")
func SaveWeights(weights *ModelWeights, filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create %s", filename)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", filename)
		}
	}()

	if !strings.HasSuffix(filename, ".xz") {
		return WriteWeights(weights, file)
	}
	xw, err := xz.NewWriter(file)
	if err != nil {
		return errors.Wrap(err, "create xz writer")
	}
	if err := WriteWeights(weights, xw); err != nil {
		return err
	}
	return errors.Wrap(xw.Close(), "flush xz stream")
}

// LoadWeights はSaveWeightsで保存したファイルを読み込み、検証する
func LoadWeights(filename string) (*ModelWeights, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", filename)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(filename, ".xz") {
		xr, err := xz.NewReader(file)
		if err != nil {
			return nil, errors.Wrap(err, "create xz reader")
		}
		r = xr
	}
	return ReadWeights(r)
}

// WriteWeights はModelWeightsをio.Writerに書き込む
func WriteWeights(weights *ModelWeights, w io.Writer) error {
	data, err := weights.ToJSON()
	if err != nil {
		return errors.Wrap(err, "encode model weights")
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return errors.Wrap(err, "write model weights")
	}
	return nil
}

// ReadWeights はio.ReaderからModelWeightsを読み込み、検証する
func ReadWeights(r io.Reader) (*ModelWeights, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read model weights")
	}
	weights := &ModelWeights{}
	if err := weights.FromJSON(data); err != nil {
		return nil, err
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return weights, nil
}
