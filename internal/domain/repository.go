package domain

// UserRepository описывает требования к хранилищу пользователей.
type UserRepository interface {
	// Create сохраняет нового пользователя.
	Create(user User) error
	// Get возвращает полную запись или ErrUserNotFound.
	Get(id string) (User, error)
	// Ref возвращает простую проекцию пользователя или ErrUserNotFound.
	Ref(id string) (UserRef, error)
	// Update перезаписывает данные пользователя.
	Update(user User) error
}

// ItemRepository описывает требования к каталогу товаров.
type ItemRepository interface {
	// Create сохраняет новый товар каталога.
	Create(item Item) error
	// Get возвращает товар с резолвнутым продавцом или ErrItemNotFound.
	Get(id string) (Item, error)
	// ListBySeller возвращает товары продавца, стабильно по id.
	ListBySeller(sellerID string) ([]Item, error)
	// Update перезаписывает товар.
	Update(item Item) error
}

// OrderRepository описывает транзакционное хранилище агрегата заказа.
// Create, Update и Delete атомарны: любой сбой на промежуточном шаге
// откатывает все записи, сделанные в рамках операции.
type OrderRepository interface {
	// Create сохраняет агрегат целиком: платёжные реквизиты, доставку,
	// заголовок и позиции. Товары без ID лениво вставляются в каталог
	// в той же транзакции. Возвращает сохранённый агрегат.
	Create(order Order) (Order, error)
	// Get пересобирает агрегат. Если какая-либо подзапись (покупатель,
	// реквизиты, продавец позиции) не находится, весь агрегат считается
	// не найденным — частично заполненный заказ никогда не возвращается.
	Get(id string) (Order, error)
	// ListByBuyer возвращает все заказы покупателя, каждый полностью
	// пересобранный; сбой сборки любого заказа — ErrOrderNotFound.
	ListByBuyer(buyerID string) ([]Order, error)
	// Update переписывает агрегат: заголовок, реквизиты и доставку
	// in-place, позиции — полной заменой. Optimistic locking по Version.
	Update(order Order) error
	// Delete удаляет позиции, заголовок, реквизиты и доставку одним
	// атомарным действием.
	Delete(id string) error
	// SetLatestDocument обновляет ссылку заголовка на свежий документ.
	// Выполняется отдельно от транзакции записи документа.
	SetLatestDocument(orderID, documentID string) error
}

// DocumentRepository хранит append-only журнал документов заказа.
type DocumentRepository interface {
	// Append добавляет документ; существующие записи не изменяются.
	Append(doc OrderDocument) error
	// Latest возвращает самый свежий документ или ErrDocumentNotFound.
	Latest(orderID string) (OrderDocument, error)
	// All возвращает все документы заказа от новых к старым.
	All(orderID string) ([]OrderDocument, error)
	// DeleteByOrder удаляет документы заказа и возвращает их количество.
	DeleteByOrder(orderID string) (int, error)
}

// SalesRepository — read-model для аналитики продаж и рекомендаций.
// Запросы не оборачиваются в общую транзакцию.
type SalesRepository interface {
	// SellerSales возвращает продажи по каждому товару продавца,
	// включая товары без продаж; порядок стабилен по id товара.
	SellerSales(sellerID string) ([]ItemSales, error)
	// PopularItems возвращает до limit товаров, отранжированных по
	// суммарно проданному количеству; никогда не дополняет нулями.
	PopularItems(limit int) ([]Item, error)
	// TopSellers возвращает продавцов покупателя по убыванию
	// купленного у них количества, не более limit.
	TopSellers(buyerID string, limit int) ([]SellerVolume, error)
	// PurchasedItemNames возвращает имена всех товаров, которые
	// покупатель когда-либо заказывал (без дубликатов).
	PurchasedItemNames(buyerID string) ([]string, error)
	// SellerItemsBySales возвращает товары продавца по убыванию
	// суммарных продаж; товары без продаж идут в хвосте.
	SellerItemsBySales(sellerID string) ([]Item, error)
}
