// Copyright 2025 un_pogaz
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

package operation

import (
	"gitlab.com/tozd/go/errors"
)

// 📋 Menu is an ordered, named group of operations exposed as one host
// toolbar action. A menu with an empty Text renders as a separator.
type Menu struct {
	Active bool `json:"Active" yaml:"active"`
	// Text is the display label; empty means separator.
	Text string `json:"Text" yaml:"text"`
	// SubMenu groups the entry under a named submenu.
	SubMenu string `json:"SubMenu" yaml:"submenu"`
	// Image is the icon file name inside the archive's images directory.
	Image      string      `json:"Image" yaml:"image"`
	Operations []Operation `json:"Operations" yaml:"operations"`
}

// 🏭 DefaultMenu returns an empty, active menu.
func DefaultMenu() Menu {
	return Menu{Active: true}
}

// menuKeys are the keys a persisted menu record must carry.
var menuKeys = []string{"Active", "Text", "SubMenu", "Image", "Operations"}

// ✅ ValidateMenuMap rejects a raw menu record with missing keys.
func ValidateMenuMap(src map[string]any) error {
	for _, key := range menuKeys {
		if _, present := src[key]; !present {
			return errors.Errorf("invalid menu configuration, the %q key is missing", key)
		}
	}
	return nil
}

// Runnable reports whether the menu would produce a toolbar action that
// runs anything: active, labeled, and holding at least one operation.
func (m Menu) Runnable() bool {
	return m.Active && m.Text != "" && len(m.Operations) > 0
}

// ActiveMenus filters menus down to the runnable ones, keeping order.
func ActiveMenus(menus []Menu) []Menu {
	out := make([]Menu, 0, len(menus))
	for _, m := range menus {
		if m.Runnable() {
			out = append(out, m)
		}
	}
	return out
}
