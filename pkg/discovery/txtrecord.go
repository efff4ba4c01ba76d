package discovery

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/wifiprov/wifiprov-go/pkg/version"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeTXT creates the TXT records for a provisioning service.
func EncodeTXT(info *ServiceInfo) TXTRecordMap {
	port := info.Port
	if port == 0 {
		port = DefaultPort
	}
	v := info.Version
	if v == "" {
		v = version.Current
	}
	return TXTRecordMap{
		TXTKeyBroadcastName: info.BroadcastName,
		TXTKeyPort:          strconv.FormatUint(uint64(port), 10),
		TXTKeyVersion:       v,
	}
}

// DecodeTXT parses provisioning service TXT records.
func DecodeTXT(txt TXTRecordMap) (*ServiceInfo, error) {
	name, ok := txt[TXTKeyBroadcastName]
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyBroadcastName)
	}

	info := &ServiceInfo{BroadcastName: name}

	if portStr, ok := txt[TXTKeyPort]; ok {
		p, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil || p == 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPort, portStr)
		}
		info.Port = uint16(p)
	}

	if v, ok := txt[TXTKeyVersion]; ok {
		if _, err := version.Parse(v); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, v)
		}
		info.Version = v
	}

	return info, nil
}

// TXTRecordsToStrings converts a TXT map to "key=value" strings, sorted
// by key so registrations are stable.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	keys := make([]string, 0, len(txt))
	for k := range txt {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]string, 0, len(keys))
	for _, k := range keys {
		result = append(result, k+"="+txt[k])
	}
	return result
}

// StringsToTXTRecords parses "key=value" strings. Entries without "=" are
// boolean attributes with an empty value.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap, len(strs))
	for _, s := range strs {
		key, value, _ := strings.Cut(s, "=")
		if key == "" {
			continue
		}
		txt[key] = value
	}
	return txt
}
