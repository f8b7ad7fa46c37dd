package ir

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// DomainProgram is the domain prefix for program fingerprints. The
// version suffix enables future algorithm migration.
const DomainProgram = "sair/program/v1"

// Fingerprint computes a content-addressed identity for the program:
// SHA-256 over the NFC-normalized dump with domain separation. Two
// programs with the same ops, attributes and appearance order always
// fingerprint identically, across platforms and runs.
func (p *Program) Fingerprint() string {
	canonical := norm.NFC.Bytes([]byte(p.Dump()))
	return hashWithDomain(DomainProgram, canonical)
}

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte separator
// prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
