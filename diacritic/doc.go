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

// Package diacritic expands letters into pattern character classes covering
// their accented variants.
//
// The keyword search compiles queries into regular expressions that run inside
// the database. Stored text is not folded, so a query for "jose" has to be
// written as j[oòóôõöōŏő...]s[eèéêëēĕėęě...] to match "José". An Expander performs
// that rewrite on an already escaped, lower-cased pattern fragment.
//
// Latin returns the default table, derived from Unicode decompositions of the
// Latin-1 Supplement and Latin Extended-A/B blocks. ExpanderFunc adapts any
// function, which is how tests substitute a small stub table.
package diacritic
