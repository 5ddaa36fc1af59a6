package isa

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrInvalidBytecode wraps every malformed-binary failure: a truncated
// instruction frame, a truncated data word, an unknown opcode tag, or an
// unknown addressing-mode bit pattern.
var ErrInvalidBytecode = errors.New("invalid bytecode")

const (
	instructionFrameBytes = 5
	dataWordBytes         = 4
)

var sentinelFrame = [instructionFrameBytes]byte{}

// Encode lays out instructions and the data-memory image exactly as
// described by the wire format: each instruction becomes a 5-byte frame
// (1 byte of opcode<<2|mode, then a big-endian signed int32 arg), followed
// by a 5-zero sentinel frame, followed by the data words as big-endian
// signed int32s.
func Encode(instrs []Instruction, data []int32) []byte {
	out := make([]byte, 0, (len(instrs)+1)*instructionFrameBytes+len(data)*dataWordBytes)
	var frame [instructionFrameBytes]byte
	for _, instr := range instrs {
		frame[0] = byte(instr.Op)<<2 | byte(instr.Mode)
		binary.BigEndian.PutUint32(frame[1:], uint32(instr.Arg))
		out = append(out, frame[:]...)
	}
	out = append(out, sentinelFrame[:]...)
	for _, word := range data {
		var wordBytes [dataWordBytes]byte
		binary.BigEndian.PutUint32(wordBytes[:], uint32(word))
		out = append(out, wordBytes[:]...)
	}
	return out
}

// Decode is the inverse of Encode: it reads 5-byte frames until it finds
// the all-zero sentinel, then treats everything after it as 4-byte signed
// data words. A truncated frame, truncated data word, unknown opcode tag,
// or unknown addressing mode is reported as ErrInvalidBytecode.
func Decode(b []byte) ([]Instruction, []int32, error) {
	var instrs []Instruction
	pos := 0
	for {
		if pos+instructionFrameBytes > len(b) {
			return nil, nil, errors.Wrap(ErrInvalidBytecode, "truncated instruction frame")
		}
		frame := b[pos : pos+instructionFrameBytes]
		pos += instructionFrameBytes
		if [instructionFrameBytes]byte(frame) == sentinelFrame {
			break
		}

		opByte := frame[0]
		op := Opcode(opByte >> 2)
		mode := AddressingMode(opByte & 0b11)
		if !op.Valid() {
			return nil, nil, errors.Wrapf(ErrInvalidBytecode, "unknown opcode tag %d", opByte>>2)
		}
		if !mode.Valid() {
			return nil, nil, errors.Wrapf(ErrInvalidBytecode, "unknown addressing mode %d", opByte&0b11)
		}
		arg := int32(binary.BigEndian.Uint32(frame[1:]))
		instrs = append(instrs, Instruction{Op: op, Arg: arg, Mode: mode})
	}

	var data []int32
	for pos < len(b) {
		if pos+dataWordBytes > len(b) {
			return nil, nil, errors.Wrap(ErrInvalidBytecode, "truncated data word")
		}
		data = append(data, int32(binary.BigEndian.Uint32(b[pos:pos+dataWordBytes])))
		pos += dataWordBytes
	}

	return instrs, data, nil
}
