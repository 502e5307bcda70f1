package models

// -----------------------------------------------------------------------------
// MIdentity is the canonical, provider-agnostic reference to one asset.
// ID is immutable once set; merging keeps the first-seen ID and unions aliases.
// -----------------------------------------------------------------------------

type MIdentity struct {
	ID      string   `json:"id"`      // stable provider-agnostic key (first resolver wins)
	Symbol  string   `json:"symbol"`  // ticker, stored lowercase
	Name    string   `json:"name"`    // display name
	Aliases []string `json:"aliases"` // alternate symbols/names accumulated from providers

	// ProviderIDs maps provider name -> that provider's native id for this asset,
	// so FetchData can address the upstream API directly.
	ProviderIDs map[string]string `json:"provider_ids"`
}

// -----------------------------------------------------------------------------

// Merge folds another resolved identity into this one.
// First-seen ID/Symbol/Name win; aliases and provider ids are unioned.
func (id *MIdentity) Merge(other MIdentity) {
	if id.ID == "" {
		id.ID = other.ID
	}
	if id.Symbol == "" {
		id.Symbol = other.Symbol
	}
	if id.Name == "" {
		id.Name = other.Name
	}

	for _, alias := range other.Aliases {
		id.AddAlias(alias)
	}
	if other.Symbol != "" {
		id.AddAlias(other.Symbol)
	}

	if id.ProviderIDs == nil {
		id.ProviderIDs = make(map[string]string)
	}
	for provider, pid := range other.ProviderIDs {
		if _, exists := id.ProviderIDs[provider]; !exists {
			id.ProviderIDs[provider] = pid
		}
	}
}

// -----------------------------------------------------------------------------

// AddAlias appends an alias if it is not already present.
// Callers are expected to pass lowercased values.
func (id *MIdentity) AddAlias(alias string) {
	if alias == "" || alias == id.Symbol {
		return
	}
	for _, a := range id.Aliases {
		if a == alias {
			return
		}
	}
	id.Aliases = append(id.Aliases, alias)
}
