package logtail

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, idx := 0, 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		ring[idx] = line
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Record is one log line split into the parts the footer styles separately.
type Record struct {
	Time    time.Time
	Level   string
	Message string
	Attrs   string
}

// String renders the record on one line as "15:04:05 LEVEL message k=v".
func (r Record) String() string {
	var parts []string
	if !r.Time.IsZero() {
		parts = append(parts, r.Time.Local().Format("15:04:05"))
	}
	if r.Level != "" {
		parts = append(parts, r.Level)
	}
	if r.Message != "" {
		parts = append(parts, r.Message)
	}
	if r.Attrs != "" {
		parts = append(parts, r.Attrs)
	}
	return strings.Join(parts, " ")
}

// Parse decodes a line written by slog's JSON handler. Attributes keep their
// original order and nested groups are flattened to dotted keys. Anything that
// is not a JSON object comes back verbatim as the message.
func Parse(line string) Record {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return Record{Message: trimmed}
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()

	var rec Record
	var attrs []string
	if err := walkObject(dec, "", func(key string, value any) {
		switch key {
		case "time":
			if s, ok := value.(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
					rec.Time = t
					return
				}
			}
		case "level":
			rec.Level = fmt.Sprint(value)
			return
		case "msg":
			rec.Message = fmt.Sprint(value)
			return
		}
		attrs = append(attrs, key+"="+formatValue(value))
	}); err != nil {
		return Record{Message: trimmed}
	}
	rec.Attrs = strings.Join(attrs, " ")
	return rec
}

func walkObject(dec *json.Decoder, prefix string, emit func(string, any)) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		if prefix != "" {
			key = prefix + "." + key
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '{' {
			inner := json.NewDecoder(bytes.NewReader(raw))
			inner.UseNumber()
			if err := walkObject(inner, key, emit); err != nil {
				return err
			}
			continue
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return err
		}
		emit(key, value)
	}
	_, err = dec.Token()
	if err == io.EOF {
		return nil
	}
	return err
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		if t == "" || strings.ContainsAny(t, " =\"") {
			return fmt.Sprintf("%q", t)
		}
		return t
	case []any:
		data, _ := json.Marshal(t)
		return string(data)
	default:
		return fmt.Sprint(t)
	}
}
