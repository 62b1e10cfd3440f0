package model

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/YuminosukeSato/tabprep/core/compress"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// 保存形式 (リトルエンディアン):
//
//	magic    [4]byte  "TPRP"
//	version  uint8
//	codec    uint8    compress.Type
//	checksum uint64   xxhash64(payload)
//	length   uint32   len(payload)
//	payload  []byte   codec(gob(model))
const (
	formatVersion = 1
	headerSize    = 4 + 1 + 1 + 8 + 4
)

var magic = [4]byte{'T', 'P', 'R', 'P'}

// Marshal はモデルをgobでエンコードし、指定したコーデックで圧縮したバイト列を返す
//
// パラメータ:
//   - model: 保存する値（エクスポートされたフィールドを持つ構造体）
//   - codec: 圧縮方式
//
// 戻り値:
//   - []byte: ヘッダ付きのバイト列
//   - error: エンコードまたは圧縮に失敗した場合のエラー
func Marshal(model interface{}, codec compress.Type) ([]byte, error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(model); err != nil {
		return nil, errors.Wrap(err, "failed to encode model")
	}

	c, err := compress.GetCodec(codec)
	if err != nil {
		return nil, errors.NewValidationError("compression", err.Error(), codec)
	}
	payload, err := c.Compress(raw.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compress model with %s", codec)
	}
	// 圧縮できないブロックは無圧縮で保存する
	if len(payload) == 0 && raw.Len() > 0 {
		codec = compress.None
		payload = raw.Bytes()
	}

	out := make([]byte, headerSize, headerSize+len(payload))
	copy(out[0:4], magic[:])
	out[4] = formatVersion
	out[5] = byte(codec)
	binary.LittleEndian.PutUint64(out[6:14], xxhash.Sum64(payload))
	binary.LittleEndian.PutUint32(out[14:18], uint32(len(payload)))
	return append(out, payload...), nil
}

// Unmarshal はMarshalで作成したバイト列をmodelへデコードする
// チェックサムが一致しない場合は ErrChecksumMismatch を返す
func Unmarshal(data []byte, model interface{}) error {
	if len(data) < headerSize {
		return errors.NewValueErrorWrap("model.Unmarshal", "truncated header", io.ErrUnexpectedEOF)
	}
	if !bytes.Equal(data[0:4], magic[:]) {
		return errors.NewValueError("model.Unmarshal", "not a tabprep model file")
	}
	if data[4] != formatVersion {
		return errors.NewValueError("model.Unmarshal", "unsupported format version")
	}
	codec := compress.Type(data[5])
	checksum := binary.LittleEndian.Uint64(data[6:14])
	length := int(binary.LittleEndian.Uint32(data[14:18]))

	payload := data[headerSize:]
	if len(payload) != length {
		return errors.NewValueErrorWrap("model.Unmarshal", "truncated payload", io.ErrUnexpectedEOF)
	}
	if xxhash.Sum64(payload) != checksum {
		return errors.NewValueErrorWrap("model.Unmarshal", "payload is corrupted", errors.ErrChecksumMismatch)
	}

	c, err := compress.GetCodec(codec)
	if err != nil {
		return errors.NewValidationError("compression", err.Error(), codec)
	}
	raw, err := c.Decompress(payload)
	if err != nil {
		return errors.Wrapf(err, "failed to decompress model with %s", codec)
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(model); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}

// SaveModel はモデルをファイルに保存する
//
// 使用例:
//
//	err := model.SaveModel(pipe.State(), "pipeline.bin", compress.Zstd)
func SaveModel(model interface{}, filename string, codec compress.Type) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer file.Close()

	if err := SaveModelToWriter(model, file, codec); err != nil {
		return err
	}
	return file.Close()
}

// LoadModel はファイルからモデルを読み込む
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter はモデルをio.Writerに保存する
func SaveModelToWriter(model interface{}, w io.Writer, codec compress.Type) error {
	data, err := Marshal(model, codec)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "failed to write model")
	}
	return nil
}

// LoadModelFromReader はio.Readerからモデルを読み込む
func LoadModelFromReader(model interface{}, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "failed to read model")
	}
	return Unmarshal(data, model)
}
