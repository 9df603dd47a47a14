package i18n

import "survey-curator/internal/template"

// Compile returns a copy of tpl with every localized value projected to
// lang and Technical.Language set to lang. Compiling an already compiled
// template changes nothing.
func Compile(tpl *template.Template, lang string, fallbacks []string) (*template.Template, error) {
	out, err := tpl.Clone()
	if err != nil {
		return nil, err
	}

	out.Technical = localizeSection(out.Technical, lang, fallbacks)
	out.Study = localizeSection(out.Study, lang, fallbacks)
	out.Metadata = localizeSection(out.Metadata, lang, fallbacks)
	out.I18n = localizeSection(out.I18n, lang, fallbacks)
	out.Sections = localizeSection(out.Sections, lang, fallbacks)

	for _, id := range out.ItemIDs() {
		compileItem(out.Items[id], lang, fallbacks)
	}

	out.SetLanguage(lang)

	return out, nil
}

func localizeSection(m map[string]any, lang string, fallbacks []string) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Localize(v, lang, fallbacks)
	}

	return out
}

func compileItem(def *template.ItemDefinition, lang string, fallbacks []string) {
	if def == nil {
		return
	}

	def.Description = LocalizeText(def.Description, lang, fallbacks)

	if def.Levels != nil {
		for _, code := range def.Levels.Keys() {
			label, _ := def.Levels.Label(code)
			def.Levels.Set(code, LocalizeText(label, lang, fallbacks))
		}
	}

	if def.Extra != nil {
		def.Extra = localizeSection(def.Extra, lang, fallbacks)
	}
}
