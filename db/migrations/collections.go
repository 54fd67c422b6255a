package migrations

const (
	PostsCollection = "posts"
	PagesCollection = "pages"
)

func postsCollection() Collection {
	return Collection{
		Name: PostsCollection,
		Fields: []Field{
			{Name: "title", Type: FieldText, Required: true, Presentable: true},
			{Name: "content", Type: FieldEditor, Required: true},
			{Name: "published", Type: FieldAutodate, Presentable: true, OnCreate: true},
			{Name: "tags", Type: FieldText},
			{Name: "slug", Type: FieldText},
			{Name: "excerpt", Type: FieldEditor},
			{Name: "featured_image", Type: FieldFile},
		},
	}
}

func pagesCollection() Collection {
	return Collection{
		Name: PagesCollection,
		Fields: []Field{
			{Name: "title", Type: FieldText, Required: true, Presentable: true},
			{Name: "content", Type: FieldEditor, Required: true},
			{Name: "slug", Type: FieldText},
			{Name: "sort_order", Type: FieldNumber},
		},
	}
}

// All lists every migration in the order it must be applied.
func All() []Migration {
	return []Migration{
		collectionMigration("1680000000_posts", postsCollection()),
		collectionMigration("1680000001_pages", pagesCollection()),
	}
}
