package api

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"time"

	"howett.net/plist"
)

var zipMagic = []byte("PK\x03\x04")

// pickupDateLayouts are the ISO-8601 forms seen in pickup_date.
var pickupDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParsePickupPayload decodes the XML property list served by the data endpoint.
// Records lacking category_id or pickup_date are skipped; the payload as a whole
// must be an XML plist with a dates array.
func ParsePickupPayload(raw []byte) ([]PickupRecord, error) {
	return parsePickupPayload(slog.Default(), raw)
}

func parsePickupPayload(logger *slog.Logger, raw []byte) ([]PickupRecord, error) {
	if bytes.HasPrefix(raw, zipMagic) {
		unpacked, err := unzipFirst(raw)
		if err != nil {
			return nil, &PayloadError{Reason: "invalid zip archive", Wrapped: err}
		}
		raw = unpacked
	}

	var content map[string]interface{}
	format, err := plist.Unmarshal(raw, &content)
	if err != nil {
		return nil, &PayloadError{Reason: "not a property list", Wrapped: err}
	}
	if format != plist.XMLFormat {
		return nil, &PayloadError{Reason: fmt.Sprintf("unexpected property list format %s", plist.FormatNames[format])}
	}

	rawDates, ok := content["dates"]
	if !ok {
		return nil, &PayloadError{Reason: "missing dates array"}
	}
	entries, ok := rawDates.([]interface{})
	if !ok {
		return nil, &PayloadError{Reason: fmt.Sprintf("dates is %T, want array", rawDates)}
	}

	records := make([]PickupRecord, 0, len(entries))
	for i, e := range entries {
		rec, err := decodePickupRecord(e)
		if err != nil {
			logger.Warn("skipping malformed pickup record", "index", i, "err", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodePickupRecord(entry interface{}) (PickupRecord, error) {
	dict, ok := entry.(map[string]interface{})
	if !ok {
		return PickupRecord{}, fmt.Errorf("record is %T, want dict", entry)
	}
	categoryID, ok := dict["category_id"].(string)
	if !ok || categoryID == "" {
		return PickupRecord{}, fmt.Errorf("missing category_id")
	}

	var date time.Time
	switch v := dict["pickup_date"].(type) {
	case time.Time:
		date = v
	case string:
		d, err := parsePickupDate(v)
		if err != nil {
			return PickupRecord{}, err
		}
		date = d
	case nil:
		return PickupRecord{}, fmt.Errorf("missing pickup_date")
	default:
		return PickupRecord{}, fmt.Errorf("pickup_date is %T", v)
	}

	return PickupRecord{CategoryID: categoryID, PickupDate: date}, nil
}

func parsePickupDate(s string) (time.Time, error) {
	for _, layout := range pickupDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid pickup_date %q", s)
}

// unzipFirst returns the contents of the first file in a zip archive.
func unzipFirst(raw []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("archive is empty")
}
