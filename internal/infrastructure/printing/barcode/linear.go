package barcode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/twooffive"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// modules is a sequence of bar (true) and space (false) modules
type modules []bool

var errNotNumeric = errors.New("value must contain digits only")

// encodeLinear encodes value for a linear symbology
func encodeLinear(symbology Symbology, value string) (modules, error) {
	switch symbology {
	case SymbologyCode128:
		return fromBarcode(code128.Encode(value))
	case SymbologyCode128A:
		if err := checkCode128A(value); err != nil {
			return nil, err
		}
		return fromBarcode(code128.Encode(value))
	case SymbologyCode128B:
		if err := checkCode128B(value); err != nil {
			return nil, err
		}
		return fromBarcode(code128.Encode(value))
	case SymbologyCode128C:
		if err := checkCode128C(value); err != nil {
			return nil, err
		}
		return fromBarcode(code128.Encode(value))
	case SymbologyEAN13, SymbologyEAN8:
		if err := checkEANLength(symbology, value); err != nil {
			return nil, err
		}
		return fromBarcode(ean.Encode(value))
	case SymbologyUPCA:
		if len(value) != 11 && len(value) != 12 {
			return nil, fmt.Errorf("UPC-A needs 11 or 12 digits, got %d", len(value))
		}
		return fromBarcode(ean.Encode("0" + value))
	case SymbologyI25:
		if len(value)%2 != 0 {
			value = "0" + value
		}
		return fromBarcode(twooffive.Encode(value, true))
	case SymbologyEAN2:
		return encodeEANAddon(value, 2)
	case SymbologyEAN5:
		return encodeEANAddon(value, 5)
	case SymbologyUPCE:
		return encodeUPCE(value)
	case SymbologyPharma:
		return encodePharmacode(value)
	}
	return nil, fmt.Errorf("no encoder for %s", symbology)
}

func fromBarcode(code bc.Barcode, err error) (modules, error) {
	if err != nil {
		return nil, err
	}
	bounds := code.Bounds()
	out := make(modules, 0, bounds.Dx())
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		r, _, _, _ := code.At(x, bounds.Min.Y).RGBA()
		out = append(out, r == 0)
	}
	return out, nil
}

func checkCode128A(value string) error {
	for _, r := range value {
		if r > 95 {
			return fmt.Errorf("character %q is not in code set A", r)
		}
	}
	return nil
}

func checkCode128B(value string) error {
	for _, r := range value {
		if r < 32 || r > 127 {
			return fmt.Errorf("character %q is not in code set B", r)
		}
	}
	return nil
}

func checkCode128C(value string) error {
	if value == "" || len(value)%2 != 0 {
		return errors.New("code set C needs an even number of digits")
	}
	if !isDigits(value) {
		return errNotNumeric
	}
	return nil
}

func checkEANLength(symbology Symbology, value string) error {
	if !isDigits(value) {
		return errNotNumeric
	}
	switch {
	case symbology == SymbologyEAN13 && (len(value) == 12 || len(value) == 13):
		return nil
	case symbology == SymbologyEAN8 && (len(value) == 7 || len(value) == 8):
		return nil
	}
	return fmt.Errorf("invalid length %d for %s", len(value), symbology)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// EAN character sets. Set A uses odd parity, set B even parity.
var (
	eanSetA = [10]string{"0001101", "0011001", "0010011", "0111101", "0100011", "0110001", "0101111", "0111011", "0110111", "0001011"}
	eanSetB = [10]string{"0100111", "0110011", "0011011", "0100001", "0011101", "0111001", "0000101", "0010001", "0001001", "0010111"}

	ean2Parity = [4]string{"AA", "AB", "BA", "BB"}
	ean5Parity = [10]string{"BBAAA", "BABAA", "BAABA", "BAAAB", "ABBAA", "AABBA", "AAABB", "ABABA", "ABAAB", "AABAB"}
)

func digitAt(s string, i int) int {
	return int(s[i] - '0')
}

// encodeEANAddon encodes the 2 and 5 digit supplements
func encodeEANAddon(value string, length int) (modules, error) {
	if len(value) > length || !isDigits(value) {
		return nil, fmt.Errorf("EAN-%d needs up to %d digits", length, length)
	}
	value = strings.Repeat("0", length-len(value)) + value

	var parity string
	if length == 2 {
		n, _ := strconv.Atoi(value)
		parity = ean2Parity[n%4]
	} else {
		sum := 3*(digitAt(value, 0)+digitAt(value, 2)+digitAt(value, 4)) + 9*(digitAt(value, 1)+digitAt(value, 3))
		parity = ean5Parity[sum%10]
	}

	var seq strings.Builder
	seq.WriteString("1011")
	for i := 0; i < length; i++ {
		if i > 0 {
			seq.WriteString("01")
		}
		seq.WriteString(eanDigit(parity[i], digitAt(value, i)))
	}
	return fromPattern(seq.String()), nil
}

func eanDigit(set byte, digit int) string {
	if set == 'A' {
		return eanSetA[digit]
	}
	return eanSetB[digit]
}

// encodeUPCE accepts 6 digits (number system 0), 7 digits (number system and
// body) or 8 digits (number system, body and check digit).
func encodeUPCE(value string) (modules, error) {
	if !isDigits(value) {
		return nil, errNotNumeric
	}
	switch len(value) {
	case 6:
		value = "0" + value
	case 7, 8:
	default:
		return nil, fmt.Errorf("UPC-E needs 6, 7 or 8 digits, got %d", len(value))
	}

	matrix, err := oned.NewUPCEWriter().Encode(value, gozxing.BarcodeFormat_UPC_E, 0, 1, upceHints)
	if err != nil {
		return nil, err
	}
	out := make(modules, matrix.GetWidth())
	for x := range out {
		out[x] = matrix.Get(x, 0)
	}
	return trimQuietZone(out), nil
}

var upceHints = map[gozxing.EncodeHintType]interface{}{gozxing.EncodeHintType_MARGIN: 0}

// trimQuietZone drops leading and trailing spaces
func trimQuietZone(m modules) modules {
	start, end := 0, len(m)
	for start < end && !m[start] {
		start++
	}
	for end > start && !m[end-1] {
		end--
	}
	return m[start:end]
}

// encodePharmacode encodes a one-track Pharmacode (3 to 131070)
func encodePharmacode(value string) (modules, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, errNotNumeric
	}
	if n < 3 || n > 131070 {
		return nil, fmt.Errorf("pharmacode %d out of range", n)
	}

	var seq []string
	for n > 0 {
		if n%2 == 0 {
			seq = append(seq, "11100")
			n -= 2
		} else {
			seq = append(seq, "100")
			n--
		}
		n /= 2
	}

	// bars were collected least significant first
	var b strings.Builder
	for i := len(seq) - 1; i >= 0; i-- {
		b.WriteString(reverse(seq[i]))
	}
	pattern := b.String()
	// drop the leading spacer of the first emitted bar
	return fromPattern(strings.TrimPrefix(pattern, "00")), nil
}

func reverse(s string) string {
	r := []byte(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func fromPattern(pattern string) modules {
	out := make(modules, len(pattern))
	for i := range pattern {
		out[i] = pattern[i] == '1'
	}
	return out
}
