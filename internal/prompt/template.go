package prompt

// DocType selects the section template and the document language.
type DocType string

const (
	DocReferat     DocType = "referat"
	DocArticleRU   DocType = "article_ru"
	DocArticleEN   DocType = "article_en"
	DocArticleRUEN DocType = "article_ru_en"
	DocLab         DocType = "lab"
)

var validDocTypes = map[DocType]bool{
	DocReferat:     true,
	DocArticleRU:   true,
	DocArticleEN:   true,
	DocArticleRUEN: true,
	DocLab:         true,
}

// Valid reports whether d is one of the known document types.
func (d DocType) Valid() bool {
	return validDocTypes[d]
}

// TemplateEntry is one top-level section the model must produce. Sub lists
// child section titles that must appear verbatim.
type TemplateEntry struct {
	Title string   `json:"title"`
	Sub   []string `json:"sub,omitempty"`
}

// Template is the ordered section list for a document type.
type Template []TemplateEntry

var templates = map[DocType]Template{
	DocArticleEN: {
		{Title: "Abstract"},
		{Title: "Keywords"},
		{Title: "Introduction"},
		{Title: "Main Body", Sub: []string{"Background", "Methods", "Results", "Discussion"}},
		{Title: "Conclusion"},
		{Title: "References"},
	},
	DocArticleRU: {
		{Title: "Аннотация"},
		{Title: "Ключевые слова"},
		{Title: "Введение"},
		{Title: "Основная часть", Sub: []string{"Предпосылки", "Методы", "Результаты", "Обсуждение"}},
		{Title: "Заключение"},
		{Title: "Список литературы"},
	},
	DocArticleRUEN: {
		{Title: "Abstract / Аннотация"},
		{Title: "Keywords / Ключевые слова"},
		{Title: "Введение"},
		{Title: "Основная часть", Sub: []string{"История/Предпосылки", "Методы", "Результаты", "Обсуждение"}},
		{Title: "Заключение"},
		{Title: "Список литературы / References"},
	},
	DocLab: {
		{Title: "Титульный лист"},
		{Title: "Цель работы"},
		{Title: "Оборудование и ПО"},
		{Title: "Теоретические сведения"},
		{Title: "Ход работы", Sub: []string{"Постановка эксперимента", "Выполнение"}},
		{Title: "Результаты"},
		{Title: "Анализ и обсуждение"},
		{Title: "Заключение"},
		{Title: "Список источников"},
	},
}

var defaultTemplate = Template{
	{Title: "Введение"},
	{Title: "Основная часть", Sub: []string{"1. Теоретическая часть", "2. Практическая часть"}},
	{Title: "Заключение"},
	{Title: "Список литературы"},
}

// TemplateFor returns a copy of the section template for d. Unknown types,
// including referat, get the generic four-section template.
func TemplateFor(d DocType) Template {
	src, ok := templates[d]
	if !ok {
		src = defaultTemplate
	}
	out := make(Template, len(src))
	for i, e := range src {
		out[i] = TemplateEntry{Title: e.Title}
		if len(e.Sub) > 0 {
			out[i].Sub = append([]string(nil), e.Sub...)
		}
	}
	return out
}

// Titles returns the top-level titles in order.
func (t Template) Titles() []string {
	titles := make([]string, len(t))
	for i, e := range t {
		titles[i] = e.Title
	}
	return titles
}
