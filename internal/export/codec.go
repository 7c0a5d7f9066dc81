package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"episodic/internal/services"
	"episodic/internal/store"
)

// WriteJSON writes records as an indented JSON array with keys in field order.
func WriteJSON(w io.Writer, fields []string, records []Record) error {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, record := range records {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")
		for j, name := range fields {
			if j > 0 {
				buf.WriteString(",")
			}
			key, _ := marshal(name)
			value, err := marshal(record[name])
			if err != nil {
				return fmt.Errorf("encode %s: %w", name, err)
			}
			buf.WriteString("\n    ")
			buf.Write(key)
			buf.WriteString(": ")
			buf.Write(value)
		}
		buf.WriteString("\n  }")
	}
	if len(records) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteCSV writes a header row of fields followed by one row per record.
func WriteCSV(w io.Writer, fields []string, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fields); err != nil {
		return err
	}
	row := make([]string, len(fields))
	for _, record := range records {
		for i, name := range fields {
			cell, err := csvCell(record[name])
			if err != nil {
				return fmt.Errorf("encode %s: %w", name, err)
			}
			row[i] = cell
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// marshal encodes value without HTML escaping so labels such as
// "Military History & Battles" stay readable.
func marshal(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func csvCell(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case []string:
		data, err := marshal(v)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported value %T", value)
	}
}

// ReadJSON decodes an export written by WriteJSON.
func ReadJSON(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, services.Wrap(services.ErrParse, "export", "read json", "", err)
	}
	records := make([]Record, 0, len(raw))
	for i, item := range raw {
		record := make(Record, len(item))
		for name, value := range item {
			c, ok := lookupColumn(name)
			if !ok {
				return nil, services.Wrap(services.ErrParse, "export", "read json", fmt.Sprintf("record %d: unknown field %q", i, name), nil)
			}
			normalized, err := fromJSON(c, value)
			if err != nil {
				return nil, services.Wrap(services.ErrParse, "export", "read json", fmt.Sprintf("record %d field %s", i, name), err)
			}
			record[name] = normalized
		}
		records = append(records, record)
	}
	return records, nil
}

func fromJSON(c column, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch c.kind {
	case kindString, kindNullableString:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		return s, nil
	case kindInt, kindNullableInt:
		n, ok := value.(json.Number)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", value)
		}
		return n.Int64()
	case kindTags:
		items, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("expected array, got %T", value)
		}
		tags := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string tag, got %T", item)
			}
			tags = append(tags, s)
		}
		return tags, nil
	}
	return nil, errors.New("unknown column kind")
}

// ReadCSV decodes an export written by WriteCSV.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "export", "read csv", "", err)
	}
	if len(rows) == 0 {
		return nil, services.Wrap(services.ErrParse, "export", "read csv", "missing header", nil)
	}
	header := rows[0]
	cols := make([]column, len(header))
	for i, name := range header {
		c, ok := lookupColumn(name)
		if !ok {
			return nil, services.Wrap(services.ErrParse, "export", "read csv", fmt.Sprintf("unknown field %q", name), nil)
		}
		cols[i] = c
	}

	records := make([]Record, 0, len(rows)-1)
	for line, row := range rows[1:] {
		record := make(Record, len(cols))
		for i, c := range cols {
			value, err := fromCSV(c, row[i])
			if err != nil {
				return nil, services.Wrap(services.ErrParse, "export", "read csv", fmt.Sprintf("row %d field %s", line+1, c.name), err)
			}
			record[c.name] = value
		}
		restoreEmptyCleaned(record)
		records = append(records, record)
	}
	return records, nil
}

// restoreEmptyCleaned undoes the CSV collapse of "" into NULL for the cleaned
// description. A cleaned row always has non-NULL cleaned text, so an empty
// cell on such a row is the empty string. Without a cleaning_status column
// the cell stays nil.
func restoreEmptyCleaned(record Record) {
	value, ok := record["cleaned_description"]
	if !ok || value != nil {
		return
	}
	if status, _ := record["cleaning_status"].(string); status == string(store.CleaningCleaned) {
		record["cleaned_description"] = ""
	}
}

func fromCSV(c column, cell string) (any, error) {
	switch c.kind {
	case kindString:
		return cell, nil
	case kindNullableString:
		if cell == "" {
			return nil, nil
		}
		return cell, nil
	case kindInt, kindNullableInt:
		if cell == "" {
			if c.kind == kindInt {
				return nil, errors.New("value required")
			}
			return nil, nil
		}
		return strconv.ParseInt(cell, 10, 64)
	case kindTags:
		if cell == "" {
			return nil, nil
		}
		var tags []string
		if err := json.Unmarshal([]byte(cell), &tags); err != nil {
			return nil, err
		}
		return tags, nil
	}
	return nil, errors.New("unknown column kind")
}
