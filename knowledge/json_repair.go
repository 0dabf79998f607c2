// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package knowledge

import "strings"

// cleanResponse strips markdown code fences and any chatter around the
// outermost JSON object of a model reply.
func cleanResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

// repairJSON fixes the formatting slips small models make most often:
// keys missing their opening quote (`, facts":`) and trailing commas
// before a closing bracket. Text inside string values is left untouched.
func repairJSON(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+16)
	inString := false

	for i := 0; i < len(in); i++ {
		ch := in[i]

		if inString {
			out = append(out, ch)
			switch ch {
			case '\\':
				if i+1 < len(in) {
					i++
					out = append(out, in[i])
				}
			case '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			out = append(out, ch)

		case '{', ',':
			out = append(out, ch)
			j := i + 1
			for j < len(in) && isSpace(in[j]) {
				out = append(out, in[j])
				j++
			}
			// An identifier directly followed by `":` is a key that lost its opening quote.
			k := j
			for k < len(in) && isKeyRune(in[k]) {
				k++
			}
			if k > j && k+1 < len(in) && in[k] == '"' && in[k+1] == ':' {
				out = append(out, '"')
				out = append(out, in[j:k+1]...)
				i = k
				continue
			}
			i = j - 1

		case '}', ']':
			// Drop a trailing comma (and the whitespace after it).
			n := len(out)
			for n > 0 && isSpace(out[n-1]) {
				n--
			}
			if n > 0 && out[n-1] == ',' {
				out = append(out[:n-1], out[n:]...)
			}
			out = append(out, ch)

		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

func isKeyRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
