package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Gruvbox-ish palette (warm, muted, easy on eyes)
const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"

	colorFg     = "\x1b[38;5;223m" // Soft cream
	colorAqua   = "\x1b[38;5;108m" // Muted cyan-green (timestamps)
	colorOrange = "\x1b[38;5;208m" // Warm orange (components)
	colorBlue   = "\x1b[38;5;109m" // Soft blue (IDs)
	colorPurple = "\x1b[38;5;175m" // Muted purple (numbers)
	colorYellow = "\x1b[38;5;214m" // Soft yellow (warnings)
	colorRed    = "\x1b[38;5;167m" // Warm red (errors)
	redBg       = "\x1b[48;5;88m"
	yellowBg    = "\x1b[48;5;58m"
)

// minimalEncoder implements a calm, compact console encoder.
// Format: "13:04:35  pulse  Publishing due post  topic=Agents duration_ms=412"
type minimalEncoder struct {
	zapcore.Encoder // Embed a base encoder for field serialization
	buf             *buffer.Buffer
}

func newMinimalEncoder() *minimalEncoder {
	// Create a base JSON encoder for field serialization (internal use only)
	baseEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	return &minimalEncoder{
		Encoder: baseEncoder,
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := buffer.NewPool().Get()

	final.AppendString(colorAqua)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: only show for WARN/ERROR with bold + background
	if ent.Level != zapcore.InfoLevel && ent.Level != zapcore.DebugLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	// Component name for visual grouping
	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorOrange)
		final.AppendString(ent.LoggerName)
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(colorFg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	if len(fields) > 0 {
		final.AppendString("  ")
		final.AppendString(formatFields(fields))
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for WARN/ERROR
func levelColorString(level zapcore.Level) string {
	switch level {
	case zapcore.WarnLevel:
		return colorBold + yellowBg + colorYellow + "WARN" + colorReset
	case zapcore.ErrorLevel:
		return colorBold + redBg + colorRed + "ERROR" + colorReset
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return colorBold + redBg + colorRed + level.CapitalString() + colorReset
	default:
		return ""
	}
}

// fieldValue extracts the value from a zap field, handling different field types
func fieldValue(field zapcore.Field) string {
	if field.Type == zapcore.StringType {
		return field.String
	}

	if field.Type == zapcore.Int64Type || field.Type == zapcore.Int32Type ||
		field.Type == zapcore.Int16Type || field.Type == zapcore.Int8Type ||
		field.Type == zapcore.Uint64Type || field.Type == zapcore.Uint32Type ||
		field.Type == zapcore.Uint16Type || field.Type == zapcore.Uint8Type {
		return fmt.Sprintf("%d", field.Integer)
	}

	if field.Type == zapcore.ErrorType || field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}

	return ""
}

// formatFields renders structured fields as colored key=value pairs.
// IDs get blue, numbers purple, errors red; everything else soft cream.
func formatFields(fields []zapcore.Field) string {
	var parts []string

	for _, field := range fields {
		val := fieldValue(field)
		if val == "" {
			continue
		}

		valColor := colorFg
		switch {
		case field.Key == "error":
			valColor = colorRed
		case strings.HasSuffix(field.Key, "_id") || field.Key == "id":
			valColor = colorBlue
		case field.Type >= zapcore.Int64Type && field.Type <= zapcore.Uint8Type:
			valColor = colorPurple
		}

		parts = append(parts, colorAqua+field.Key+colorReset+"="+valColor+val+colorReset)
	}

	return strings.Join(parts, " ")
}
