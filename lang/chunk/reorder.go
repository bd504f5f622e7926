/**
 * Copyright 2025 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package chunk

// CanReorder reports whether [a, b] may be replaced by [b, a].
func CanReorder(a, b CodeChunk) bool {
	ea, eb := a.EditedSheetIndexes(), b.EditedSheetIndexes()
	if !ea.Known() || !eb.Known() {
		return false
	}
	if ea.Intersects(eb) {
		return false
	}
	if a.SourceSheetIndexes().Intersects(eb) || b.SourceSheetIndexes().Intersects(ea) {
		return false
	}
	return true
}

// Writes is the union of created and edited sheets.
func Writes(c CodeChunk) IndexSet {
	return c.CreatedSheetIndexes().Union(c.EditedSheetIndexes())
}

// Touches is every sheet c reads or writes.
func Touches(c CodeChunk) IndexSet {
	return Writes(c).Union(c.SourceSheetIndexes()).Union(c.DeletedSheetIndexes())
}
