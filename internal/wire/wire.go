package wire

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FloatToWire converts a float64 to wire format (8 decimal string).
// This matches the Python SDK's float_to_wire function for consistent
// precision, which is what the exchange hashes server side.
func FloatToWire(x float64) (string, error) {
	// Handle NaN and infinity
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return "", fmt.Errorf("invalid float value: %v", x)
	}

	// Round to 8 decimal places
	rounded := math.Round(x*1e8) / 1e8

	// Validate rounding precision (tolerance of 1e-12)
	if math.Abs(x-rounded) > 1e-12 {
		return "", fmt.Errorf(
			"float precision loss: %v rounds to %v",
			x,
			rounded,
		)
	}

	// Format to 8 decimal places and normalize
	formatted := strconv.FormatFloat(rounded, 'f', 8, 64)

	// Remove trailing zeros after decimal point
	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(formatted, "0")
		formatted = strings.TrimRight(formatted, ".")
	}

	// Handle negative zero
	if formatted == "-0" {
		formatted = "0"
	}

	return formatted, nil
}

// FloatToInt scales x by 10^power and converts it to int64.
// Returns an error if the scaled value is not within 1e-3 of an integer,
// which prevents accidental precision loss when rounding.
func FloatToInt(x float64, power int64) (int64, error) {
	withDecimals := x * math.Pow10(int(power))

	rounded := math.Round(withDecimals)

	if math.Abs(rounded-withDecimals) >= 1e-3 {
		return 0, errors.New("float_to_int causes rounding")
	}

	return int64(rounded), nil
}

// FloatToUsdInt converts a USD float to an int scaled by 1e6.
// Fails if the value cannot be represented precisely at 6 decimals.
func FloatToUsdInt(x float64) (int64, error) {
	return FloatToInt(x, 6)
}

// StringToFloat converts a string price to float64
func StringToFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
