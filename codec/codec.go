// Package codec encrypts Temporal payloads with AES-GCM so order data is
// never stored in plain text in workflow history.
package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	commonpb "go.temporal.io/api/common/v1"
	"go.temporal.io/sdk/converter"
	"google.golang.org/protobuf/proto"
)

const (
	// MetadataEncodingEncrypted marks a payload produced by Encode.
	MetadataEncodingEncrypted = "binary/encrypted"
	metadataEncryptionCipher  = "encryption-cipher"
	cipherAESGCM              = "AES-GCM"
)

var errCiphertextTooShort = errors.New("ciphertext too short")

// EncryptionCodec is a converter.PayloadCodec that seals whole payloads.
type EncryptionCodec struct {
	aead cipher.AEAD
}

var _ converter.PayloadCodec = (*EncryptionCodec)(nil)

// NewEncryptionCodec accepts a 16, 24 or 32 byte AES key.
func NewEncryptionCodec(key []byte) (*EncryptionCodec, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &EncryptionCodec{aead: aead}, nil
}

// NewEncryptionDataConverter wraps the default data converter with the codec.
func NewEncryptionDataConverter(key []byte) (converter.DataConverter, error) {
	c, err := NewEncryptionCodec(key)
	if err != nil {
		return nil, err
	}
	return converter.NewCodecDataConverter(converter.GetDefaultDataConverter(), c), nil
}

func (c *EncryptionCodec) Encode(payloads []*commonpb.Payload) ([]*commonpb.Payload, error) {
	result := make([]*commonpb.Payload, len(payloads))
	for i, p := range payloads {
		plain, err := proto.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}

		nonce := make([]byte, c.aead.NonceSize())
		if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
			return nil, fmt.Errorf("failed to generate nonce: %w", err)
		}

		result[i] = &commonpb.Payload{
			Metadata: map[string][]byte{
				converter.MetadataEncoding: []byte(MetadataEncodingEncrypted),
				metadataEncryptionCipher:   []byte(cipherAESGCM),
			},
			Data: c.aead.Seal(nonce, nonce, plain, nil),
		}
	}
	return result, nil
}

// Decode passes through payloads that were not encrypted.
func (c *EncryptionCodec) Decode(payloads []*commonpb.Payload) ([]*commonpb.Payload, error) {
	result := make([]*commonpb.Payload, len(payloads))
	for i, p := range payloads {
		if string(p.GetMetadata()[converter.MetadataEncoding]) != MetadataEncodingEncrypted {
			result[i] = p
			continue
		}

		data := p.GetData()
		n := c.aead.NonceSize()
		if len(data) < n {
			return nil, errCiphertextTooShort
		}
		plain, err := c.aead.Open(nil, data[:n], data[n:], nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt payload: %w", err)
		}

		decoded := &commonpb.Payload{}
		if err := proto.Unmarshal(plain, decoded); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		result[i] = decoded
	}
	return result, nil
}
