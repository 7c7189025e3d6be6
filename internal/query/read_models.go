package query

import "github.com/example/dscommerce/internal/readmodel"

type ProductReadModel = readmodel.ProductReadModel
type ProductSummaryReadModel = readmodel.ProductSummaryReadModel
type OrderReadModel = readmodel.OrderReadModel

// ProductPage is the listing response.
type ProductPage = readmodel.PageReadModel[ProductSummaryReadModel]
