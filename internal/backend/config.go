package backend

import "unicode/utf8"

// MergeConfig unions a DataNode's spec.config with UTF-8-decoded secret
// data, secret keys winning on collision. Non-UTF-8 secret values are
// rejected rather than silently dropped or mangled.
func MergeConfig(dataNodeConfig map[string]string, secretData map[string][]byte) (map[string]string, error) {
	merged := make(map[string]string, len(dataNodeConfig)+len(secretData))
	for k, v := range dataNodeConfig {
		merged[k] = v
	}
	for k, v := range secretData {
		if !utf8.Valid(v) {
			return nil, internal(nil, "Failed to deserialize secret")
		}
		merged[k] = string(v)
	}
	return merged, nil
}
