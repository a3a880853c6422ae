// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"encoding/binary"
	"fmt"
)

// SignatureInfo contains parsed signature data from the (signature) member.
type SignatureInfo struct {
	Version   uint32
	Signature []byte
}

// ReadSignature reads and parses the (signature) member. It returns nil, nil
// when the archive is unsigned.
func (a *Archive) ReadSignature() (*SignatureInfo, error) {
	if !a.HasFile(SignatureName) {
		return nil, nil
	}
	data, err := a.ReadFile(SignatureName)
	if err != nil {
		return nil, err
	}

	sig, err := parseSignature(data)
	if err != nil {
		return nil, a.fail("signature", err)
	}
	return sig, nil
}

func parseSignature(data []byte) (*SignatureInfo, error) {
	if len(data) < 8 {
		return nil, newError(ErrKindFormat, nil, "signature data too small: %d bytes", len(data))
	}

	version := binary.LittleEndian.Uint32(data[0:4])
	sigLength := binary.LittleEndian.Uint32(data[4:8])
	if uint64(len(data)) < 8+uint64(sigLength) {
		return nil, newError(ErrKindFormat, nil,
			"signature data truncated: expected %d bytes, got %d", 8+uint64(sigLength), len(data))
	}

	signature := make([]byte, sigLength)
	copy(signature, data[8:8+sigLength])

	return &SignatureInfo{
		Version:   version,
		Signature: signature,
	}, nil
}

// CheckShape performs structural validation of the signature: a known
// version and a plausible length. It does not verify the signature against
// a public key.
func (s *SignatureInfo) CheckShape() error {
	if s == nil {
		return fmt.Errorf("no signature available")
	}
	if len(s.Signature) == 0 {
		return fmt.Errorf("empty signature")
	}

	switch s.Version {
	case 0: // weak
		if len(s.Signature) < 64 {
			return fmt.Errorf("weak signature too short: %d bytes", len(s.Signature))
		}
	case 1: // strong
		if len(s.Signature) < 256 {
			return fmt.Errorf("strong signature too short: %d bytes", len(s.Signature))
		}
	default:
		return fmt.Errorf("unknown signature version: %d", s.Version)
	}
	return nil
}
