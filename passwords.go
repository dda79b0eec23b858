package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/goliatone/go-errors"
)

const (
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+[]{}<>?"
)

// DefaultPasswordLength is used by GenerateSecurePassword when callers
// pass zero.
const DefaultPasswordLength = 12

// memorableWords feeds GenerateMemorablePassword. Short, common, easy
// to type.
var memorableWords = []string{
	"amber", "basil", "cedar", "clover", "coral", "delta", "ember",
	"fable", "falcon", "garnet", "hazel", "indigo", "juniper", "harbor",
	"lunar", "maple", "nectar", "ocean", "onyx", "pepper", "quartz",
	"raven", "saffron", "summit", "timber", "tulip", "umber", "velvet",
	"willow", "zephyr",
}

// GenerateSecurePassword returns a random password of the given length
// containing at least one uppercase letter, one lowercase letter, one
// digit, and one symbol. The remaining positions are drawn uniformly
// from the combined alphabet and the result is shuffled with a
// crypto-seeded Fisher-Yates so class positions are not predictable.
// Lengths below 4 cannot satisfy the class guarantee and fail.
func GenerateSecurePassword(length int) (string, error) {
	if length == 0 {
		length = DefaultPasswordLength
	}

	if length < 4 {
		return "", errors.Wrap(
			ErrPasswordTooShort,
			errors.CategoryBadInput,
			fmt.Sprintf("requested length %d cannot include all character classes", length),
		)
	}

	classes := []string{upperChars, lowerChars, digitChars, symbolChars}
	combined := upperChars + lowerChars + digitChars + symbolChars

	chars := make([]byte, 0, length)
	for _, class := range classes {
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	for len(chars) < length {
		c, err := randomChar(combined)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	if err := secureShuffle(chars); err != nil {
		return "", err
	}

	return string(chars), nil
}

// GenerateMemorablePassword composes two dictionary words, a 3 digit
// number, and one symbol into a fixed word+word+digits+symbol shape.
func GenerateMemorablePassword() string {
	w1 := memorableWords[mustRandomInt(len(memorableWords))]
	w2 := memorableWords[mustRandomInt(len(memorableWords))]
	num := mustRandomInt(1000)
	sym := symbolChars[mustRandomInt(len(symbolChars))]

	return fmt.Sprintf("%s%s%03d%c", w1, w2, num, sym)
}

func randomChar(alphabet string) (byte, error) {
	idx, err := randomInt(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[idx], nil
}

func secureShuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := randomInt(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}

func randomInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "failed to read from secure random source")
	}
	return int(n.Int64()), nil
}

// mustRandomInt panics only if the platform CSPRNG is unreadable, which
// is not a recoverable condition for credential generation.
func mustRandomInt(max int) int {
	n, err := randomInt(max)
	if err != nil {
		panic(err)
	}
	return n
}
